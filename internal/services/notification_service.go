package services

import (
	"context"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// Notify is CreateNotification for side effects: errors are logged, not returned.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) {
	if err := s.CreateNotification(ctx, userID, notifType, title, message, targetID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"type":   notifType,
		}).Warn("Failed to create notification")
	}
}

// GetUserNotifications returns all live notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	notifications, err := s.repo.GetUserNotifications(ctx, userID)
	if err != nil {
		return nil, internalError("GetUserNotifications", err, logrus.Fields{"userID": userID.Hex()})
	}
	return notifications, nil
}

// MarkNotificationAsRead sets the "read" status of one of the user's notifications
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error {
	ok, err := s.repo.MarkAsRead(ctx, notifID, userID)
	if err != nil {
		return internalError("MarkNotificationAsRead", err, logrus.Fields{"notificationID": notifID.Hex()})
	}
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification deletes one of the user's notifications
func (s *NotificationService) DeleteNotification(ctx context.Context, notifID, userID primitive.ObjectID) error {
	ok, err := s.repo.DeleteNotification(ctx, notifID, userID)
	if err != nil {
		return internalError("DeleteNotification", err, logrus.Fields{"notificationID": notifID.Hex()})
	}
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// CleanupExpiredNotifications is run periodically by the scheduler.
func (s *NotificationService) CleanupExpiredNotifications(ctx context.Context) error {
	n, err := s.repo.DeleteExpiredNotifications(ctx)
	if err != nil {
		return err
	}
	logrus.WithField("deleted", n).Info("Expired notifications removed")
	return nil
}
