package handlers

import (
	"context"
	"io"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	RegisterUser(ctx context.Context, in services.RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type FriendService interface {
	SendFriendRequest(ctx context.Context, senderID primitive.ObjectID, recipientEmail string) (*models.FriendRequestView, error)
	ListRequests(ctx context.Context, userID primitive.ObjectID) (*models.PendingRequests, error)
	AcceptRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) (*models.Friendship, error)
	RejectRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error
	IsFriend(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Friend, error)
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
}

type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, text string, attachment *models.Attachment) (*models.Message, error)
	GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, userID, friendID primitive.ObjectID) (int64, error)
	ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error)
	OpenAttachment(ctx context.Context, userID, messageID primitive.ObjectID) (*models.Attachment, io.ReadCloser, error)
}

type GroupService interface {
	CreateGroup(ctx context.Context, creatorID primitive.ObjectID, name string, memberEmails []string) (*models.MembershipResult, error)
	AddMembers(ctx context.Context, actingUserID, groupID primitive.ObjectID, emails []string) (*models.MembershipResult, error)
	SendGroupMessage(ctx context.Context, senderID, groupID primitive.ObjectID, text string) (*models.GroupMessage, error)
	GetGroupConversation(ctx context.Context, userID, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error)
	ListUserGroups(ctx context.Context, userID primitive.ObjectID) ([]models.GroupSummary, error)
	LeaveGroup(ctx context.Context, userID, groupID primitive.ObjectID) error
	DeleteGroup(ctx context.Context, actingUserID, groupID primitive.ObjectID) error
	MemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkNotificationAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, notifID, userID primitive.ObjectID) error
}

// AttachmentStore persists uploaded files.
type AttachmentStore interface {
	Save(r io.Reader, originalName string) (string, int64, error)
	Remove(name string) error
}

// Pusher delivers realtime events to connected users.
type Pusher interface {
	PushToUser(userID primitive.ObjectID, event realtime.Event)
	PushToUsers(userIDs []primitive.ObjectID, event realtime.Event)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
