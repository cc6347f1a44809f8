package services

import (
	"context"
	"io"
	"sync"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeTx runs fn directly and records how many transactions were opened.
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}

type sentNotification struct {
	UserID primitive.ObjectID
	Type   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID primitive.ObjectID, notifType, _, _ string, _ *primitive.ObjectID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: notifType})
}

// ---- UserStore ----

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	args := m.Called(ctx, id, update)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserStore) GetAllUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetUsersByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	args := m.Called(ctx, emails)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

// ---- FriendStore ----

type mockFriendStore struct{ mock.Mock }

func (m *mockFriendStore) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*models.FriendRequest)
	return r, args.Error(1)
}

func (m *mockFriendStore) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.FriendRequest)
	return r, args.Error(1)
}

func (m *mockFriendStore) HasPendingRequest(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	args := m.Called(ctx, pair)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendStore) GetPendingByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.FriendRequest, error) {
	args := m.Called(ctx, receiverID)
	r, _ := args.Get(0).([]models.FriendRequest)
	return r, args.Error(1)
}

func (m *mockFriendStore) GetPendingBySender(ctx context.Context, senderID primitive.ObjectID) ([]models.FriendRequest, error) {
	args := m.Called(ctx, senderID)
	r, _ := args.Get(0).([]models.FriendRequest)
	return r, args.Error(1)
}

func (m *mockFriendStore) ResolveRequest(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendStore) CreateFriendship(ctx context.Context, pair models.CanonicalPair) (*models.Friendship, error) {
	args := m.Called(ctx, pair)
	f, _ := args.Get(0).(*models.Friendship)
	return f, args.Error(1)
}

func (m *mockFriendStore) FriendshipExists(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	args := m.Called(ctx, pair)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendStore) ListFriendships(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	f, _ := args.Get(0).([]models.Friendship)
	return f, args.Error(1)
}

func (m *mockFriendStore) DeleteFriendship(ctx context.Context, pair models.CanonicalPair) (bool, error) {
	args := m.Called(ctx, pair)
	return args.Bool(0), args.Error(1)
}

// ---- ChatStore ----

type mockChatStore struct{ mock.Mock }

func (m *mockChatStore) SendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	args := m.Called(ctx, msg)
	r, _ := args.Get(0).(*models.Message)
	return r, args.Error(1)
}

func (m *mockChatStore) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Message)
	return r, args.Error(1)
}

func (m *mockChatStore) GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, limit, offset)
	r, _ := args.Get(0).([]models.Message)
	return r, args.Error(1)
}

func (m *mockChatStore) MarkRead(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, receiverID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChatStore) ConversationActivity(ctx context.Context, userID primitive.ObjectID) ([]models.PeerActivity, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]models.PeerActivity)
	return r, args.Error(1)
}

// ---- GroupStore ----

type mockGroupStore struct{ mock.Mock }

func (m *mockGroupStore) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	args := m.Called(ctx, group)
	g, _ := args.Get(0).(*models.Group)
	return g, args.Error(1)
}

func (m *mockGroupStore) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*models.Group)
	return g, args.Error(1)
}

func (m *mockGroupStore) GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	args := m.Called(ctx, ids)
	g, _ := args.Get(0).([]models.Group)
	return g, args.Error(1)
}

func (m *mockGroupStore) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGroupStore) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGroupStore) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGroupStore) ListGroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]primitive.ObjectID)
	return r, args.Error(1)
}

func (m *mockGroupStore) ListMemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, groupID)
	r, _ := args.Get(0).([]primitive.ObjectID)
	return r, args.Error(1)
}

func (m *mockGroupStore) CountMembers(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, groupIDs)
	r, _ := args.Get(0).(map[primitive.ObjectID]int64)
	return r, args.Error(1)
}

func (m *mockGroupStore) SendMessage(ctx context.Context, msg *models.GroupMessage) (*models.GroupMessage, error) {
	args := m.Called(ctx, msg)
	r, _ := args.Get(0).(*models.GroupMessage)
	return r, args.Error(1)
}

func (m *mockGroupStore) GetMessages(ctx context.Context, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID, limit, offset)
	r, _ := args.Get(0).([]models.GroupMessage)
	return r, args.Error(1)
}

func (m *mockGroupStore) LastMessages(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]models.GroupMessage, error) {
	args := m.Called(ctx, groupIDs)
	r, _ := args.Get(0).(map[primitive.ObjectID]models.GroupMessage)
	return r, args.Error(1)
}

func (m *mockGroupStore) DeleteMembers(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGroupStore) DeleteMessages(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGroupStore) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, groupID)
	return args.Bool(0), args.Error(1)
}

// ---- NotificationStore ----

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	return m.Called(ctx, notif).Error(0)
}

func (m *mockNotificationStore) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]models.Notification)
	return r, args.Error(1)
}

func (m *mockNotificationStore) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotificationStore) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotificationStore) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ---- FriendDirectory, FileOpener, Mailer ----

type mockFriendDirectory struct{ mock.Mock }

func (m *mockFriendDirectory) IsFriend(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendDirectory) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]models.Friend)
	return r, args.Error(1)
}

type mockFiles struct{ mock.Mock }

func (m *mockFiles) Open(path string) (io.ReadCloser, error) {
	args := m.Called(path)
	r, _ := args.Get(0).(io.ReadCloser)
	return r, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}
