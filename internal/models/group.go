package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Group struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type GroupMember struct {
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

type GroupMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	SenderID  primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	Text      string             `bson:"message" json:"message"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// MembershipResult reports the outcome of adding members by email.
type MembershipResult struct {
	Group          *Group       `json:"group"`
	Added          []PublicUser `json:"added"`
	AlreadyMembers []PublicUser `json:"already_members,omitempty"`
	NotFoundEmails []string     `json:"not_found_emails"`
}

// GroupSummary is one row of a user's group list.
type GroupSummary struct {
	Group
	MemberCount int64        `json:"member_count"`
	LastMessage *LastMessage `json:"last_message,omitempty"`
}
