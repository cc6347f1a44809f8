package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendFriendRequestHandler(t *testing.T) {
	me := primitive.NewObjectID()

	t.Run("created", func(t *testing.T) {
		svc := &mockFriendService{}
		view := &models.FriendRequestView{
			FriendRequest: models.FriendRequest{ID: primitive.NewObjectID(), SenderID: me, Status: models.RequestPending},
			Receiver:      &models.PublicUser{Name: "Bob", Email: "b@x.com"},
		}
		svc.On("SendFriendRequest", mock.Anything, me, "b@x.com").Return(view, nil)

		rec := httptest.NewRecorder()
		NewFriendHandler(svc).SendFriendRequestHandler(rec,
			newRequest(http.MethodPost, "/friends/requests", jsonBody(`{"email":"b@x.com"}`), me, nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := readEnvelope(t, rec)
		assert.True(t, env.Success)
		var got models.FriendRequestView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, models.RequestPending, got.Status)
		assert.Equal(t, "Bob", got.Receiver.Name)
		svc.AssertExpectations(t)
	})

	t.Run("pending conflict", func(t *testing.T) {
		svc := &mockFriendService{}
		svc.On("SendFriendRequest", mock.Anything, me, "b@x.com").Return(nil, apperrors.ErrRequestPending)

		rec := httptest.NewRecorder()
		NewFriendHandler(svc).SendFriendRequestHandler(rec,
			newRequest(http.MethodPost, "/friends/requests", jsonBody(`{"email":"b@x.com"}`), me, nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		env := readEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, string(apperrors.CodeConflict), env.Error)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := &mockFriendService{}
		rec := httptest.NewRecorder()
		NewFriendHandler(svc).SendFriendRequestHandler(rec,
			newRequest(http.MethodPost, "/friends/requests", jsonBody(`{"email":"nope"}`), me, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, readEnvelope(t, rec).Message, "email")
		svc.AssertNotCalled(t, "SendFriendRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewFriendHandler(&mockFriendService{}).SendFriendRequestHandler(rec,
			newRequest(http.MethodPost, "/friends/requests", jsonBody(`{"email":"b@x.com"}`), primitive.NilObjectID, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAcceptRequestHandler(t *testing.T) {
	me, reqID := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("not recipient", func(t *testing.T) {
		svc := &mockFriendService{}
		svc.On("AcceptRequest", mock.Anything, reqID, me).Return(nil, apperrors.ErrRequestNotRecipient)

		rec := httptest.NewRecorder()
		NewFriendHandler(svc).AcceptRequestHandler(rec,
			newRequest(http.MethodPost, "/", nil, me, map[string]string{"id": reqID.Hex()}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewFriendHandler(&mockFriendService{}).AcceptRequestHandler(rec,
			newRequest(http.MethodPost, "/", nil, me, map[string]string{"id": "xyz"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		svc := &mockFriendService{}
		svc.On("AcceptRequest", mock.Anything, reqID, me).Return(&models.Friendship{ID: primitive.NewObjectID()}, nil)

		rec := httptest.NewRecorder()
		NewFriendHandler(svc).AcceptRequestHandler(rec,
			newRequest(http.MethodPost, "/", nil, me, map[string]string{"id": reqID.Hex()}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRemoveFriendHandler(t *testing.T) {
	me, friend := primitive.NewObjectID(), primitive.NewObjectID()
	svc := &mockFriendService{}
	svc.On("RemoveFriend", mock.Anything, me, friend).Return(apperrors.ErrFriendshipNotFound)

	rec := httptest.NewRecorder()
	NewFriendHandler(svc).RemoveFriendHandler(rec,
		newRequest(http.MethodDelete, "/", nil, me, map[string]string{"id": friend.Hex()}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
