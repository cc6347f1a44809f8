package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to websocket clients.
const (
	EventMessage      = "message"
	EventGroupMessage = "group_message"
	EventTyping       = "typing"
	EventStatus       = "status"
	EventError        = "error"
)

// Event is the frame written to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub tracks live connections by user. A user may hold several connections
// (one per tab or device); pushes go to all of them.
type Hub struct {
	mu      sync.RWMutex
	userMap map[primitive.ObjectID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{userMap: make(map[primitive.ObjectID]map[*Client]struct{})}
}

// Register adds c and reports whether it is the user's first live connection.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.userMap[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.userMap[c.userID] = conns
	}
	conns[c] = struct{}{}

	logrus.WithFields(logrus.Fields{
		"userID":      c.userID.Hex(),
		"connections": len(conns),
	}).Info("Websocket client connected")
	return len(conns) == 1
}

// Unregister removes c, closes its send queue and reports whether the user
// has no connections left. Unregistering twice is harmless.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.userMap[c.userID]
	if !ok {
		return false
	}
	if _, ok := conns[c]; !ok {
		return false
	}
	delete(conns, c)
	close(c.send)

	logrus.WithField("userID", c.userID.Hex()).Info("Websocket client disconnected")
	if len(conns) == 0 {
		delete(h.userMap, c.userID)
		return true
	}
	return false
}

// IsConnected reports whether the user has a live connection to this process.
func (h *Hub) IsConnected(userID primitive.ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userMap[userID]) > 0
}

// PushToUser sends event to every connection of userID. Users without a
// connection are skipped silently.
func (h *Hub) PushToUser(userID primitive.ObjectID, event Event) {
	h.PushToUsers([]primitive.ObjectID{userID}, event)
}

// PushToUsers sends event to every connection of each listed user. Clients
// whose queue is full are dropped.
func (h *Hub) PushToUsers(userIDs []primitive.ObjectID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("type", event.Type).Error("Failed to marshal websocket event")
		return
	}

	var slow []*Client
	h.mu.RLock()
	for _, id := range userIDs {
		for c := range h.userMap[id] {
			select {
			case c.send <- data:
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logrus.WithField("userID", c.userID.Hex()).Warn("Websocket send queue full, dropping client")
		h.Unregister(c)
	}
}
