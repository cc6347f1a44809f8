package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	jwtutil "github.com/imanmolsaini/Campus-Connect-sub000/pkg/jwt"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const frameTimeout = 10 * time.Second

// WSMessage is a frame sent by the client.
type WSMessage struct {
	Type       string `json:"type"` // "text" or "typing"
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text,omitempty"`
	Typing     bool   `json:"typing,omitempty"`
}

type statusPayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type typingPayload struct {
	SenderID string `json:"sender_id"`
	Typing   bool   `json:"typing"`
}

type errorPayload struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// RealtimeHandler owns the websocket endpoint and presence queries.
type RealtimeHandler struct {
	Chat      ChatService
	Friends   FriendService
	Hub       *realtime.Hub
	Presence  realtime.Presence
	JWTSecret string
	upgrader  websocket.Upgrader
}

func NewRealtimeHandler(chat ChatService, friends FriendService, hub *realtime.Hub, presence realtime.Presence, jwtSecret string, allowedOrigins []string) *RealtimeHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &RealtimeHandler{
		Chat:      chat,
		Friends:   friends,
		Hub:       hub,
		Presence:  presence,
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ChatWebSocketHandler upgrades GET /chat/ws?token= to a websocket. Browsers
// cannot set headers on websocket requests, so the token travels in the query.
func (h *RealtimeHandler) ChatWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Fail(w, apperrors.CodeUnauthenticated, "missing token")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket auth failed")
		response.Fail(w, apperrors.CodeUnauthenticated, "invalid token")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		response.Fail(w, apperrors.CodeUnauthenticated, "invalid token subject")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logrus.WithError(err).WithField("userID", userID.Hex()).Warn("WebSocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.Hub, conn, userID)
	if h.Hub.Register(client) {
		h.setStatus(userID, true)
	} else {
		h.heartbeat(userID)
	}

	go client.WritePump()
	client.ReadPump(
		func(data []byte) { h.handleFrame(userID, data) },
		func() { h.heartbeat(userID) },
	)

	if h.Hub.Unregister(client) {
		h.setStatus(userID, false)
	}
}

func (h *RealtimeHandler) handleFrame(userID primitive.ObjectID, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.pushError(userID, apperrors.InvalidInput("malformed frame"))
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(msg.ReceiverID)
	if err != nil {
		h.pushError(userID, apperrors.ErrInvalidReceiver)
		return
	}

	switch msg.Type {
	case "", "text":
		sent, err := h.Chat.SendMessage(ctx, userID, receiverID, msg.Text, nil)
		if err != nil {
			h.pushError(userID, err)
			return
		}
		h.Hub.PushToUsers([]primitive.ObjectID{receiverID, userID}, realtime.Event{
			Type:    realtime.EventMessage,
			Payload: sent,
		})

	case "typing":
		ok, err := h.Friends.IsFriend(ctx, userID, receiverID)
		if err != nil || !ok {
			return
		}
		h.Hub.PushToUser(receiverID, realtime.Event{
			Type:    realtime.EventTyping,
			Payload: typingPayload{SenderID: userID.Hex(), Typing: msg.Typing},
		})

	default:
		h.pushError(userID, apperrors.InvalidInput("unknown frame type "+msg.Type))
	}
}

func (h *RealtimeHandler) pushError(userID primitive.ObjectID, err error) {
	payload := errorPayload{Code: apperrors.CodeOf(err), Message: "internal server error"}
	var appErr *apperrors.AppError
	if payload.Code != apperrors.CodeInternal && errors.As(err, &appErr) {
		payload.Message = appErr.Message
	}
	h.Hub.PushToUser(userID, realtime.Event{Type: realtime.EventError, Payload: payload})
}

func (h *RealtimeHandler) heartbeat(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	if err := h.Presence.Heartbeat(ctx, userID); err != nil {
		logrus.WithError(err).WithField("userID", userID.Hex()).Warn("Presence heartbeat failed")
	}
}

// setStatus records the transition and tells the user's friends about it.
func (h *RealtimeHandler) setStatus(userID primitive.ObjectID, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	status := "offline"
	var err error
	if online {
		status = "online"
		err = h.Presence.Heartbeat(ctx, userID)
	} else {
		err = h.Presence.SetOffline(ctx, userID)
	}
	if err != nil {
		logrus.WithError(err).WithField("userID", userID.Hex()).Warn("Presence update failed")
	}

	friends, err := h.Friends.GetFriends(ctx, userID)
	if err != nil {
		return
	}
	h.Hub.PushToUsers(friendIDs(friends), realtime.Event{
		Type:    realtime.EventStatus,
		Payload: statusPayload{UserID: userID.Hex(), Status: status},
	})
}

// PresenceHandler lists the caller's friends that are currently online.
func (h *RealtimeHandler) PresenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	friends, err := h.Friends.GetFriends(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	onlineIDs, err := h.Presence.Online(r.Context(), friendIDs(friends))
	if err != nil {
		response.Error(w, apperrors.Internal("presence lookup failed", err))
		return
	}

	isOnline := make(map[primitive.ObjectID]bool, len(onlineIDs))
	for _, id := range onlineIDs {
		isOnline[id] = true
	}
	online := make([]models.PublicUser, 0, len(onlineIDs))
	for _, f := range friends {
		if isOnline[f.ID] {
			online = append(online, f.PublicUser)
		}
	}
	response.OK(w, "Online friends fetched", online)
}

func friendIDs(friends []models.Friend) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(friends))
	for _, f := range friends {
		ids = append(ids, f.ID)
	}
	return ids
}
