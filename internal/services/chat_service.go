package services

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/repository"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService implements direct messaging between friends. Every read and
// write is gated on the friendship edge.
type ChatService struct {
	repo    ChatStore
	friends FriendDirectory
	users   UserStore
	files   FileOpener
}

func NewChatService(repo ChatStore, friends FriendDirectory, users UserStore, files FileOpener) *ChatService {
	return &ChatService{repo: repo, friends: friends, users: users, files: files}
}

// SendMessage stores a message from senderID to receiverID. Text, an
// attachment, or both must be supplied.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, text string, attachment *models.Attachment) (*models.Message, error) {
	if receiverID.IsZero() || receiverID == senderID {
		return nil, apperrors.ErrInvalidReceiver
	}
	if err := s.requireFriend(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	msg, err := s.repo.SendMessage(ctx, &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Attachment: attachment,
	})
	if err != nil {
		return nil, internalError("SendMessage", err, logrus.Fields{
			"senderID":   senderID.Hex(),
			"receiverID": receiverID.Hex(),
		})
	}
	return msg, nil
}

// GetConversation returns one page of the conversation oldest first. Pages are
// cut from the newest end, so a larger offset walks back in time. It does not
// change read state; callers that display the page call MarkRead.
func (s *ChatService) GetConversation(ctx context.Context, userID, friendID primitive.ObjectID, limit, offset int) ([]models.Message, error) {
	if err := s.requireFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}

	limit, offset = Page(limit, offset)
	messages, err := s.repo.GetConversation(ctx, userID, friendID, limit, offset)
	if err != nil {
		return nil, internalError("GetConversation", err, logrus.Fields{
			"userID":   userID.Hex(),
			"friendID": friendID.Hex(),
		})
	}

	// reverse to chronological
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead flips every unread message friendID sent to userID. Calling it
// again is a no-op.
func (s *ChatService) MarkRead(ctx context.Context, userID, friendID primitive.ObjectID) (int64, error) {
	if err := s.requireFriend(ctx, userID, friendID); err != nil {
		return 0, err
	}

	n, err := s.repo.MarkRead(ctx, userID, friendID)
	if err != nil {
		return 0, internalError("MarkRead", err, logrus.Fields{
			"userID":   userID.Hex(),
			"friendID": friendID.Hex(),
		})
	}
	return n, nil
}

// ListConversations returns one row per friend with the latest message and
// the unread count, most recent activity first. Friends without messages
// come last.
func (s *ChatService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	friends, err := s.friends.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.ConversationActivity(ctx, userID)
	if err != nil {
		return nil, internalError("ListConversations.Activity", err, logrus.Fields{"userID": userID.Hex()})
	}
	byPeer := make(map[primitive.ObjectID]models.PeerActivity, len(activity))
	for _, a := range activity {
		byPeer[a.PeerID] = a
	}

	var selfName string
	for _, a := range activity {
		if a.Last.SenderID == userID {
			me, err := s.users.GetUserByID(ctx, userID)
			if err != nil {
				return nil, internalError("ListConversations.Self", err, logrus.Fields{"userID": userID.Hex()})
			}
			selfName = me.Name
			break
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(friends))
	for _, f := range friends {
		summary := models.ConversationSummary{Friend: f.PublicUser}
		if a, ok := byPeer[f.ID]; ok {
			summary.UnreadCount = a.UnreadCount
			summary.LastMessage = &models.LastMessage{
				Text:          a.Last.Text,
				HasAttachment: a.Last.Attachment != nil,
				SenderID:      a.Last.SenderID,
				CreatedAt:     a.Last.CreatedAt,
			}
			if a.Last.SenderID == f.ID {
				summary.LastMessage.SenderName = f.Name
			} else {
				summary.LastMessage.SenderName = selfName
			}
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return summaries, nil
}

// OpenAttachment checks that userID took part in the message and opens the
// stored attachment. The caller must close the returned reader.
func (s *ChatService) OpenAttachment(ctx context.Context, userID, messageID primitive.ObjectID) (*models.Attachment, io.ReadCloser, error) {
	fields := logrus.Fields{"userID": userID.Hex(), "messageID": messageID.Hex()}

	msg, err := s.repo.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.ErrMessageNotFound
		}
		return nil, nil, internalError("OpenAttachment.GetMessageByID", err, fields)
	}
	if userID != msg.SenderID && userID != msg.ReceiverID {
		return nil, nil, apperrors.ErrAttachmentForbidden
	}
	if msg.Attachment == nil || msg.Attachment.Path == "" {
		return nil, nil, apperrors.ErrAttachmentNotFound
	}

	rc, err := s.files.Open(msg.Attachment.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.WithFields(fields).Warn("Attachment file missing on disk")
			return nil, nil, apperrors.ErrAttachmentNotFound
		}
		return nil, nil, internalError("OpenAttachment.Open", err, fields)
	}
	return msg.Attachment, rc, nil
}

func (s *ChatService) requireFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	ok, err := s.friends.IsFriend(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFriends
	}
	return nil
}
