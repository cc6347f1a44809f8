package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment describes a stored file. The bytes live in the file store under Path.
type Attachment struct {
	Path     string `bson:"path" json:"-"`
	Name     string `bson:"name" json:"name"`
	Size     int64  `bson:"size" json:"size"`
	MimeType string `bson:"mime_type" json:"mime_type"`
}

// Message is a direct message between two friends.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiver_id"`
	Text       string             `bson:"message,omitempty" json:"message,omitempty"`
	Attachment *Attachment        `bson:"attachment,omitempty" json:"attachment,omitempty"`
	IsRead     bool               `bson:"is_read" json:"is_read"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// LastMessage summarises the latest message of a conversation.
type LastMessage struct {
	Text          string             `json:"message"`
	HasAttachment bool               `json:"has_attachment"`
	SenderID      primitive.ObjectID `json:"sender_id"`
	SenderName    string             `json:"sender_name,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ConversationSummary is one row of the conversation list: a friend, the latest
// message exchanged with them and how many of their messages are unread.
type ConversationSummary struct {
	Friend      PublicUser   `json:"friend"`
	LastMessage *LastMessage `json:"last_message,omitempty"`
	UnreadCount int64        `json:"unread_count"`
}

// PeerActivity is the per-peer aggregate computed from the message log.
type PeerActivity struct {
	PeerID      primitive.ObjectID `bson:"_id"`
	Last        Message            `bson:"last"`
	UnreadCount int64              `bson:"unread"`
}
