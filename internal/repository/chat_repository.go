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

// ChatRepository stores direct messages.
type ChatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(store *database.Store) *ChatRepository {
	return &ChatRepository{collection: store.DB().Collection(database.MessagesCollection)}
}

func (r *ChatRepository) SendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.CreatedAt = time.Now().UTC()
	msg.IsRead = false

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return nil, translate(err, "chatRepo.SendMessage")
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)
	return msg, nil
}

func (r *ChatRepository) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, translate(err, "chatRepo.GetMessageByID")
	}
	return &msg, nil
}

// GetConversation returns one page of messages between the two users, newest
// first. Offset walks backwards in time.
func (r *ChatRepository) GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": userID, "receiver_id": friendID},
			{"sender_id": friendID, "receiver_id": userID},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "chatRepo.GetConversation")
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, translate(err, "chatRepo.GetConversation.Decode")
	}
	return messages, nil
}

// MarkRead flips every unread message from senderID to receiverID.
func (r *ChatRepository) MarkRead(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"receiver_id": receiverID, "sender_id": senderID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, translate(err, "chatRepo.MarkRead")
	}
	return result.ModifiedCount, nil
}

// ConversationActivity groups the user's messages by peer, returning the latest
// message and the number of unread messages the peer sent to the user.
func (r *ChatRepository) ConversationActivity(ctx context.Context, userID primitive.ObjectID) ([]models.PeerActivity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": []bson.M{
			{"sender_id": userID},
			{"receiver_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", userID}},
				"$receiver_id",
				"$sender_id",
			}},
			"last": bson.M{"$first": "$$ROOT"},
			"unread": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver_id", userID}},
					bson.M{"$eq": bson.A{"$is_read", false}},
				}},
				1,
				0,
			}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "chatRepo.ConversationActivity")
	}
	defer cursor.Close(ctx)

	activity := []models.PeerActivity{}
	if err := cursor.All(ctx, &activity); err != nil {
		return nil, translate(err, "chatRepo.ConversationActivity.Decode")
	}
	return activity, nil
}
