package handlers

import (
	"net/http"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/logger"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

type friendRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendFriendRequestHandler sends a friend request to the user with the given email.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req friendRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	request, err := h.Service.SendFriendRequest(r.Context(), userID, req.Email)
	if err != nil {
		logger.Log.Warnf("User %s failed to send friend request: %v", userID.Hex(), err)
		response.Error(w, err)
		return
	}

	response.Created(w, "Friend request sent", request)
}

// GetPendingRequestsHandler lists pending requests received and sent.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	requests, err := h.Service.ListRequests(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Friend requests fetched", requests)
}

func (h *FriendHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	friendship, err := h.Service.AcceptRequest(r.Context(), requestID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Log.Infof("User %s accepted friend request %s", userID.Hex(), requestID.Hex())
	response.OK(w, "Friend request accepted", friendship)
}

func (h *FriendHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.RejectRequest(r.Context(), requestID, userID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Friend request rejected", nil)
}

// GetFriendsHandler lists the caller's friends, newest first.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Friends fetched", friends)
}

func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	friendID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		response.Error(w, err)
		return
	}

	logger.Log.Infof("User %s removed friend %s", userID.Hex(), friendID.Hex())
	response.OK(w, "Friend removed", nil)
}
