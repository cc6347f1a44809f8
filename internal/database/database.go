package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the repositories.
const (
	UsersCollection          = "users"
	FriendRequestsCollection = "friend_requests"
	FriendshipsCollection    = "friendships"
	MessagesCollection       = "messages"
	GroupsCollection         = "groups"
	GroupMembersCollection   = "group_members"
	GroupMessagesCollection  = "group_messages"
	NotificationsCollection  = "notifications"
)

// Store owns the MongoDB client. It is created once at startup and passed to
// every repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	store := &Store{client: client, db: client.Database(dbName)}
	if err := store.HealthCheck(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logrus.WithField("database", dbName).Info("Connected to MongoDB")
	return store, nil
}

// DB returns the application database.
func (s *Store) DB() *mongo.Database {
	return s.db
}

// HealthCheck pings the primary.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %v", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction. The context
// handed to fn carries the session, so repository calls made with it join the
// transaction. Any error returned by fn aborts it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// EnsureIndexes creates the collections and indexes the invariants rely on.
// Collections are created up front because they cannot be created implicitly
// inside a transaction on older servers.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verify_token", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		FriendRequestsCollection: {
			{
				Keys: bson.D{{Key: "pair_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("one_pending_per_pair").
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		FriendshipsCollection: {
			{Keys: bson.D{{Key: "user1_id", Value: 1}, {Key: "user2_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user2_id", Value: 1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}}},
		},
		GroupsCollection: {
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
		GroupMembersCollection: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		GroupMessagesCollection: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
	}

	existing, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for name, models := range indexes {
		if !have[name] {
			if err := s.db.CreateCollection(ctx, name); err != nil {
				return fmt.Errorf("failed to create collection %s: %v", name, err)
			}
		}
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %v", name, err)
		}
	}

	logrus.Info("MongoDB indexes ensured")
	return nil
}
