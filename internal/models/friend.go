package models

import (
	"bytes"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

type FriendRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiver_id"`
	PairKey    string             `bson:"pair_key" json:"-"`
	Status     string             `bson:"status" json:"status"` // "pending", "accepted", "rejected"
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// FriendRequestView is a pending request with the other party's public identity.
type FriendRequestView struct {
	FriendRequest
	Sender   *PublicUser `json:"sender,omitempty"`
	Receiver *PublicUser `json:"receiver,omitempty"`
}

// PendingRequests splits a user's pending requests by direction.
type PendingRequests struct {
	Received []FriendRequestView `json:"received"`
	Sent     []FriendRequestView `json:"sent"`
}

// Friendship is an undirected edge stored under its canonical pair.
type Friendship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User1ID   primitive.ObjectID `bson:"user1_id" json:"user1_id"`
	User2ID   primitive.ObjectID `bson:"user2_id" json:"user2_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Other returns the participant that is not userID.
func (f *Friendship) Other(userID primitive.ObjectID) primitive.ObjectID {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}

type Friend struct {
	PublicUser
	FriendsSince time.Time `json:"friends_since"`
}

// CanonicalPair orders two user ids so the smaller one comes first. Every
// read and write of a Friendship goes through it.
type CanonicalPair struct {
	User1ID primitive.ObjectID
	User2ID primitive.ObjectID
}

func NewCanonicalPair(a, b primitive.ObjectID) CanonicalPair {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return CanonicalPair{User1ID: a, User2ID: b}
}

// Key identifies the unordered pair as a single string.
func (p CanonicalPair) Key() string {
	return p.User1ID.Hex() + ":" + p.User2ID.Hex()
}
