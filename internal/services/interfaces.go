package services

import (
	"context"
	"io"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs fn atomically. Repository calls made with the context passed
// to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error)
	UpdateLastActive(ctx context.Context, id primitive.ObjectID) error
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetUsersByEmails(ctx context.Context, emails []string) ([]models.User, error)
}

type FriendStore interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	HasPendingRequest(ctx context.Context, pair models.CanonicalPair) (bool, error)
	GetPendingByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.FriendRequest, error)
	GetPendingBySender(ctx context.Context, senderID primitive.ObjectID) ([]models.FriendRequest, error)
	ResolveRequest(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
	CreateFriendship(ctx context.Context, pair models.CanonicalPair) (*models.Friendship, error)
	FriendshipExists(ctx context.Context, pair models.CanonicalPair) (bool, error)
	ListFriendships(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
	DeleteFriendship(ctx context.Context, pair models.CanonicalPair) (bool, error)
}

type ChatStore interface {
	SendMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error)
	ConversationActivity(ctx context.Context, userID primitive.ObjectID) ([]models.PeerActivity, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	ListGroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	ListMemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error)
	CountMembers(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	SendMessage(ctx context.Context, msg *models.GroupMessage) (*models.GroupMessage, error)
	GetMessages(ctx context.Context, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error)
	LastMessages(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]models.GroupMessage, error)
	DeleteMembers(ctx context.Context, groupID primitive.ObjectID) (int64, error)
	DeleteMessages(ctx context.Context, groupID primitive.ObjectID) (int64, error)
	DeleteGroup(ctx context.Context, groupID primitive.ObjectID) (bool, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// Notifier records in-app notifications. Failures never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID)
}

// FriendDirectory answers friendship questions for the chat service.
type FriendDirectory interface {
	IsFriend(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Friend, error)
}

// FileOpener opens stored attachment bytes.
type FileOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// Mailer delivers plain text emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}
