package repository

import (
	"context"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/database"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 7 * 24 * time.Hour

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(store *database.Store) *NotificationRepository {
	return &NotificationRepository{
		collection: store.DB().Collection(database.NotificationsCollection),
	}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now().UTC()
	notif.ExpiresAt = notif.CreatedAt.Add(NotificationTTL)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return translate(err, "notificationRepo.CreateNotification")
	}
	notif.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetUserNotifications returns the user's unexpired notifications, newest first
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "notificationRepo.GetUserNotifications")
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, translate(err, "notificationRepo.GetUserNotifications.Decode")
	}
	return notifications, nil
}

// MarkAsRead sets Read on a notification owned by userID.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, translate(err, "notificationRepo.MarkAsRead")
	}
	return result.MatchedCount == 1, nil
}

// DeleteNotification deletes a notification owned by userID.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, translate(err, "notificationRepo.DeleteNotification")
	}
	return result.DeletedCount == 1, nil
}

// DeleteExpiredNotifications removes everything past its expiry.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return 0, translate(err, "notificationRepo.DeleteExpiredNotifications")
	}
	return result.DeletedCount, nil
}
