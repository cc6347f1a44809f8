package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/repository"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendService handles the friend request lifecycle and the friendship graph.
type FriendService struct {
	tx         Transactor
	friendRepo FriendStore
	userRepo   UserStore
	notifier   Notifier
}

// NewFriendService creates a new FriendService.
func NewFriendService(tx Transactor, friendRepo FriendStore, userRepo UserStore, notifier Notifier) *FriendService {
	return &FriendService{
		tx:         tx,
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// SendFriendRequest creates a pending request from senderID to the user
// registered under recipientEmail.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID primitive.ObjectID, recipientEmail string) (*models.FriendRequestView, error) {
	fields := logrus.Fields{"senderID": senderID.Hex()}

	recipient, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(recipientEmail))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, internalError("SendFriendRequest.GetUserByEmail", err, fields)
	}
	if recipient.ID == senderID {
		return nil, apperrors.ErrSelfRequest
	}
	fields["receiverID"] = recipient.ID.Hex()

	pair := models.NewCanonicalPair(senderID, recipient.ID)

	friends, err := s.friendRepo.FriendshipExists(ctx, pair)
	if err != nil {
		return nil, internalError("SendFriendRequest.FriendshipExists", err, fields)
	}
	if friends {
		return nil, apperrors.ErrAlreadyFriends
	}

	pending, err := s.friendRepo.HasPendingRequest(ctx, pair)
	if err != nil {
		return nil, internalError("SendFriendRequest.HasPendingRequest", err, fields)
	}
	if pending {
		return nil, apperrors.ErrRequestPending
	}

	request, err := s.friendRepo.CreateRequest(ctx, &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: recipient.ID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent request for the same pair
			return nil, apperrors.ErrRequestPending
		}
		return nil, internalError("SendFriendRequest.CreateRequest", err, fields)
	}

	if sender, err := s.userRepo.GetUserByID(ctx, senderID); err == nil {
		s.notifier.Notify(ctx, recipient.ID, models.NotifyFriendRequestReceived,
			"New friend request",
			fmt.Sprintf("%s wants to be your friend.", sender.Name),
			&request.ID)
	}

	logrus.WithFields(fields).Info("Friend request sent")
	public := recipient.Public()
	return &models.FriendRequestView{FriendRequest: *request, Receiver: &public}, nil
}

// ListRequests returns the pending requests the user received and sent.
func (s *FriendService) ListRequests(ctx context.Context, userID primitive.ObjectID) (*models.PendingRequests, error) {
	fields := logrus.Fields{"userID": userID.Hex()}

	received, err := s.friendRepo.GetPendingByReceiver(ctx, userID)
	if err != nil {
		return nil, internalError("ListRequests.Received", err, fields)
	}
	sent, err := s.friendRepo.GetPendingBySender(ctx, userID)
	if err != nil {
		return nil, internalError("ListRequests.Sent", err, fields)
	}

	ids := make([]primitive.ObjectID, 0, len(received)+len(sent))
	for _, r := range received {
		ids = append(ids, r.SenderID)
	}
	for _, r := range sent {
		ids = append(ids, r.ReceiverID)
	}
	people, err := s.publicUsers(ctx, ids)
	if err != nil {
		return nil, internalError("ListRequests.Users", err, fields)
	}

	result := &models.PendingRequests{
		Received: make([]models.FriendRequestView, 0, len(received)),
		Sent:     make([]models.FriendRequestView, 0, len(sent)),
	}
	for _, r := range received {
		view := models.FriendRequestView{FriendRequest: r}
		if p, ok := people[r.SenderID]; ok {
			view.Sender = &p
		}
		result.Received = append(result.Received, view)
	}
	for _, r := range sent {
		view := models.FriendRequestView{FriendRequest: r}
		if p, ok := people[r.ReceiverID]; ok {
			view.Receiver = &p
		}
		result.Sent = append(result.Sent, view)
	}
	return result, nil
}

// AcceptRequest marks the request accepted and creates the friendship in one
// transaction. The pending status is re-checked inside the transaction so two
// racing accepts produce a single friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) (*models.Friendship, error) {
	request, err := s.guardResponse(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}

	pair := models.NewCanonicalPair(request.SenderID, request.ReceiverID)
	var friendship *models.Friendship

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.friendRepo.ResolveRequest(txCtx, requestID, models.RequestAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrRequestProcessed
		}

		friendship, err = s.friendRepo.CreateFriendship(txCtx, pair)
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.ErrAlreadyFriends
		}
		return err
	})
	if err != nil {
		return nil, internalError("AcceptRequest.Transaction", err, logrus.Fields{
			"requestID": requestID.Hex(),
			"userID":    actingUserID.Hex(),
		})
	}

	if receiver, err := s.userRepo.GetUserByID(ctx, request.ReceiverID); err == nil {
		s.notifier.Notify(ctx, request.SenderID, models.NotifyFriendRequestAccepted,
			"Friend request accepted",
			fmt.Sprintf("%s accepted your friend request.", receiver.Name),
			&request.ID)
	}

	logrus.WithFields(logrus.Fields{
		"requestID": requestID.Hex(),
		"user1ID":   pair.User1ID.Hex(),
		"user2ID":   pair.User2ID.Hex(),
	}).Info("Friend request accepted")
	return friendship, nil
}

// RejectRequest marks the request rejected. No friendship is created.
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	if _, err := s.guardResponse(ctx, requestID, actingUserID); err != nil {
		return err
	}

	ok, err := s.friendRepo.ResolveRequest(ctx, requestID, models.RequestRejected)
	if err != nil {
		return internalError("RejectRequest.ResolveRequest", err, logrus.Fields{"requestID": requestID.Hex()})
	}
	if !ok {
		return apperrors.ErrRequestProcessed
	}

	logrus.WithField("requestID", requestID.Hex()).Info("Friend request rejected")
	return nil
}

// guardResponse applies the checks shared by accept and reject.
func (s *FriendService) guardResponse(ctx context.Context, requestID, actingUserID primitive.ObjectID) (*models.FriendRequest, error) {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, internalError("GetRequestByID", err, logrus.Fields{"requestID": requestID.Hex()})
	}
	if request.ReceiverID != actingUserID {
		return nil, apperrors.ErrRequestNotRecipient
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.ErrRequestProcessed
	}
	return request, nil
}

// IsFriend reports whether a and b share a friendship edge.
func (s *FriendService) IsFriend(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	if a == b {
		return false, nil
	}
	ok, err := s.friendRepo.FriendshipExists(ctx, models.NewCanonicalPair(a, b))
	if err != nil {
		return false, internalError("IsFriend", err, logrus.Fields{"userID": a.Hex(), "friendID": b.Hex()})
	}
	return ok, nil
}

// GetFriends returns the user's friends, newest friendship first.
func (s *FriendService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Friend, error) {
	fields := logrus.Fields{"userID": userID.Hex()}

	friendships, err := s.friendRepo.ListFriendships(ctx, userID)
	if err != nil {
		return nil, internalError("GetFriends.ListFriendships", err, fields)
	}
	if len(friendships) == 0 {
		return []models.Friend{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Other(userID))
	}
	people, err := s.publicUsers(ctx, ids)
	if err != nil {
		return nil, internalError("GetFriends.Users", err, fields)
	}

	friends := make([]models.Friend, 0, len(friendships))
	for i := range friendships {
		p, ok := people[friendships[i].Other(userID)]
		if !ok {
			continue
		}
		friends = append(friends, models.Friend{PublicUser: p, FriendsSince: friendships[i].CreatedAt})
	}
	return friends, nil
}

// RemoveFriend deletes the friendship edge. Message history is kept.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	removed, err := s.friendRepo.DeleteFriendship(ctx, models.NewCanonicalPair(userID, friendID))
	if err != nil {
		return internalError("RemoveFriend", err, logrus.Fields{"userID": userID.Hex(), "friendID": friendID.Hex()})
	}
	if !removed {
		return apperrors.ErrFriendshipNotFound
	}

	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "friendID": friendID.Hex()}).Info("Friend removed")
	return nil
}

func (s *FriendService) publicUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicUser, error) {
	return lookupPublicUsers(ctx, s.userRepo, ids)
}

// lookupPublicUsers resolves ids to public identities keyed by id.
func lookupPublicUsers(ctx context.Context, repo UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicUser, error) {
	out := make(map[primitive.ObjectID]models.PublicUser, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].Public()
	}
	return out, nil
}
