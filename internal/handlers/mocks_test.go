package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/services"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) RegisterUser(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *mockUserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

type mockFriendService struct{ mock.Mock }

func (m *mockFriendService) SendFriendRequest(ctx context.Context, senderID primitive.ObjectID, email string) (*models.FriendRequestView, error) {
	args := m.Called(ctx, senderID, email)
	v, _ := args.Get(0).(*models.FriendRequestView)
	return v, args.Error(1)
}

func (m *mockFriendService) ListRequests(ctx context.Context, userID primitive.ObjectID) (*models.PendingRequests, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*models.PendingRequests)
	return v, args.Error(1)
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) (*models.Friendship, error) {
	args := m.Called(ctx, requestID, actingUserID)
	v, _ := args.Get(0).(*models.Friendship)
	return v, args.Error(1)
}

func (m *mockFriendService) RejectRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	return m.Called(ctx, requestID, actingUserID).Error(0)
}

func (m *mockFriendService) IsFriend(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).([]models.Friend)
	return v, args.Error(1)
}

func (m *mockFriendService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

type mockChatService struct{ mock.Mock }

func (m *mockChatService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, text string, attachment *models.Attachment) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, text, attachment)
	v, _ := args.Get(0).(*models.Message)
	return v, args.Error(1)
}

func (m *mockChatService) GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, limit, offset)
	v, _ := args.Get(0).([]models.Message)
	return v, args.Error(1)
}

func (m *mockChatService) MarkRead(ctx context.Context, userID, friendID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChatService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).([]models.ConversationSummary)
	return v, args.Error(1)
}

func (m *mockChatService) OpenAttachment(ctx context.Context, userID, messageID primitive.ObjectID) (*models.Attachment, io.ReadCloser, error) {
	args := m.Called(ctx, userID, messageID)
	a, _ := args.Get(0).(*models.Attachment)
	rc, _ := args.Get(1).(io.ReadCloser)
	return a, rc, args.Error(2)
}

type mockGroupService struct{ mock.Mock }

func (m *mockGroupService) CreateGroup(ctx context.Context, creatorID primitive.ObjectID, name string, emails []string) (*models.MembershipResult, error) {
	args := m.Called(ctx, creatorID, name, emails)
	v, _ := args.Get(0).(*models.MembershipResult)
	return v, args.Error(1)
}

func (m *mockGroupService) AddMembers(ctx context.Context, actingUserID, groupID primitive.ObjectID, emails []string) (*models.MembershipResult, error) {
	args := m.Called(ctx, actingUserID, groupID, emails)
	v, _ := args.Get(0).(*models.MembershipResult)
	return v, args.Error(1)
}

func (m *mockGroupService) SendGroupMessage(ctx context.Context, senderID, groupID primitive.ObjectID, text string) (*models.GroupMessage, error) {
	args := m.Called(ctx, senderID, groupID, text)
	v, _ := args.Get(0).(*models.GroupMessage)
	return v, args.Error(1)
}

func (m *mockGroupService) GetGroupConversation(ctx context.Context, userID, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, userID, groupID, limit, offset)
	v, _ := args.Get(0).([]models.GroupMessage)
	return v, args.Error(1)
}

func (m *mockGroupService) ListUserGroups(ctx context.Context, userID primitive.ObjectID) ([]models.GroupSummary, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).([]models.GroupSummary)
	return v, args.Error(1)
}

func (m *mockGroupService) LeaveGroup(ctx context.Context, userID, groupID primitive.ObjectID) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *mockGroupService) DeleteGroup(ctx context.Context, actingUserID, groupID primitive.ObjectID) error {
	return m.Called(ctx, actingUserID, groupID).Error(0)
}

func (m *mockGroupService) MemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, groupID)
	v, _ := args.Get(0).([]primitive.ObjectID)
	return v, args.Error(1)
}

type mockAttachmentStore struct{ mock.Mock }

func (m *mockAttachmentStore) Save(r io.Reader, originalName string) (string, int64, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(string(data), originalName)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockAttachmentStore) Remove(name string) error {
	return m.Called(name).Error(0)
}

type pushed struct {
	UserIDs []primitive.ObjectID
	Event   realtime.Event
}

// recordingPusher captures pushes instead of delivering them.
type recordingPusher struct {
	mu     sync.Mutex
	events []pushed
}

func (p *recordingPusher) PushToUser(userID primitive.ObjectID, event realtime.Event) {
	p.PushToUsers([]primitive.ObjectID{userID}, event)
}

func (p *recordingPusher) PushToUsers(userIDs []primitive.ObjectID, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{UserIDs: userIDs, Event: event})
}

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }
