package repository

import (
	"context"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/database"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository stores friend requests and the friendship edges they produce.
type FriendRepository struct {
	requests    *mongo.Collection
	friendships *mongo.Collection
}

func NewFriendRepository(store *database.Store) *FriendRepository {
	return &FriendRepository{
		requests:    store.DB().Collection(database.FriendRequestsCollection),
		friendships: store.DB().Collection(database.FriendshipsCollection),
	}
}

// CreateRequest inserts a pending request. A second pending request for the
// same pair is rejected by the partial unique index on pair_key.
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.RequestPending
	req.PairKey = models.NewCanonicalPair(req.SenderID, req.ReceiverID).Key()

	result, err := r.requests.InsertOne(ctx, req)
	if err != nil {
		return nil, translate(err, "friendRepo.CreateRequest")
	}
	req.ID = result.InsertedID.(primitive.ObjectID)
	return req, nil
}

func (r *FriendRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, translate(err, "friendRepo.GetRequestByID")
	}
	return &request, nil
}

// HasPendingRequest reports whether a pending request exists between the pair
// in either direction.
func (r *FriendRepository) HasPendingRequest(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	n, err := r.requests.CountDocuments(ctx,
		bson.M{"pair_key": pair.Key(), "status": models.RequestPending},
		options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "friendRepo.HasPendingRequest")
	}
	return n > 0, nil
}

func (r *FriendRepository) GetPendingByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.findRequests(ctx, bson.M{"receiver_id": receiverID, "status": models.RequestPending})
}

func (r *FriendRepository) GetPendingBySender(ctx context.Context, senderID primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.findRequests(ctx, bson.M{"sender_id": senderID, "status": models.RequestPending})
}

func (r *FriendRepository) findRequests(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "friendRepo.findRequests")
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, translate(err, "friendRepo.findRequests.Decode")
	}
	return requests, nil
}

// ResolveRequest moves a pending request to status. It returns false when the
// request is no longer pending, so a caller inside a transaction that lost a
// race sees the request as already processed.
func (r *FriendRepository) ResolveRequest(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	result, err := r.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, translate(err, "friendRepo.ResolveRequest")
	}
	return result.MatchedCount == 1, nil
}

func (r *FriendRepository) CreateFriendship(ctx context.Context, pair models.CanonicalPair) (*models.Friendship, error) {
	friendship := &models.Friendship{
		User1ID:   pair.User1ID,
		User2ID:   pair.User2ID,
		CreatedAt: time.Now().UTC(),
	}
	result, err := r.friendships.InsertOne(ctx, friendship)
	if err != nil {
		return nil, translate(err, "friendRepo.CreateFriendship")
	}
	friendship.ID = result.InsertedID.(primitive.ObjectID)
	return friendship, nil
}

func (r *FriendRepository) FriendshipExists(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	n, err := r.friendships.CountDocuments(ctx,
		bson.M{"user1_id": pair.User1ID, "user2_id": pair.User2ID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "friendRepo.FriendshipExists")
	}
	return n > 0, nil
}

// ListFriendships returns every edge touching userID, newest first.
func (r *FriendRepository) ListFriendships(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"user1_id": userID},
			{"user2_id": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.friendships.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "friendRepo.ListFriendships")
	}
	defer cursor.Close(ctx)

	friendships := []models.Friendship{}
	if err := cursor.All(ctx, &friendships); err != nil {
		return nil, translate(err, "friendRepo.ListFriendships.Decode")
	}
	return friendships, nil
}

// DeleteFriendship removes the edge and reports whether one existed.
func (r *FriendRepository) DeleteFriendship(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	result, err := r.friendships.DeleteOne(ctx, bson.M{"user1_id": pair.User1ID, "user2_id": pair.User2ID})
	if err != nil {
		return false, translate(err, "friendRepo.DeleteFriendship")
	}
	return result.DeletedCount == 1, nil
}
