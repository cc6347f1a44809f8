package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/storage"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

// ChatHandler serves the REST side of direct messaging.
type ChatHandler struct {
	Service        ChatService
	Files          AttachmentStore
	Hub            Pusher
	MaxUploadBytes int64
}

func NewChatHandler(service ChatService, files AttachmentStore, hub Pusher, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{Service: service, Files: files, Hub: hub, MaxUploadBytes: maxUploadBytes}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"max=5000"`
}

// ListConversationsHandler returns one row per friend with the latest message
// and unread count.
func (h *ChatHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	conversations, err := h.Service.ListConversations(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Conversations fetched", conversations)
}

// GetMessagesHandler returns a page of the conversation and then marks the
// friend's messages to the caller as read.
func (h *ChatHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		response.Error(w, err)
		return
	}

	limit, offset := pageParams(r)
	messages, err := h.Service.GetConversation(r.Context(), userID, friendID, limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	if _, err := h.Service.MarkRead(r.Context(), userID, friendID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"userID":   userID.Hex(),
			"friendID": friendID.Hex(),
		}).Warn("Failed to mark conversation read")
	}

	response.OK(w, "Messages fetched", messages)
}

// SendMessageHandler accepts either a JSON body {"message": "..."} or a
// multipart form with an optional "message" field and an optional "file".
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		response.Error(w, err)
		return
	}

	var (
		text       string
		attachment *models.Attachment
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		text, attachment, err = h.readMultipart(w, r)
	} else {
		var req sendMessageRequest
		err = decodeJSON(w, r, &req)
		text = req.Message
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), userID, friendID, text, attachment)
	if err != nil {
		if attachment != nil {
			_ = h.Files.Remove(attachment.Path)
		}
		response.Error(w, err)
		return
	}

	h.Hub.PushToUsers([]primitive.ObjectID{msg.ReceiverID, msg.SenderID}, realtime.Event{
		Type:    realtime.EventMessage,
		Payload: msg,
	})
	response.Created(w, "Message sent", msg)
}

// readMultipart stores the uploaded file, if any, and returns its metadata.
func (h *ChatHandler) readMultipart(w http.ResponseWriter, r *http.Request) (string, *models.Attachment, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, apperrors.InvalidInput(fmt.Sprintf("file exceeds the %d MB limit", h.MaxUploadBytes>>20))
		}
		return "", nil, apperrors.InvalidInput("invalid multipart form")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	text := r.FormValue("message")

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return text, nil, nil
	}
	if err != nil {
		return "", nil, apperrors.InvalidInput("failed to read file")
	}
	defer file.Close()

	if header.Size > h.MaxUploadBytes {
		return "", nil, apperrors.InvalidInput(fmt.Sprintf("file exceeds the %d MB limit", h.MaxUploadBytes>>20))
	}

	stored, size, err := h.Files.Save(file, header.Filename)
	if err != nil {
		return "", nil, apperrors.Internal("failed to store attachment", err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return text, &models.Attachment{
		Path:     stored,
		Name:     header.Filename,
		Size:     size,
		MimeType: mimeType,
	}, nil
}

func (h *ChatHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		response.Error(w, err)
		return
	}

	n, err := h.Service.MarkRead(r.Context(), userID, friendID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Messages marked as read", map[string]int64{"marked": n})
}

// DownloadAttachmentHandler sends the attachment wrapped in a single-entry zip.
// The archive is built before any header is written so a failure still gets
// a proper error response.
func (h *ChatHandler) DownloadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	attachment, rc, err := h.Service.OpenAttachment(r.Context(), userID, messageID)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer rc.Close()

	archive, err := storage.SingleFileZip(attachment.Name, messageID.Timestamp(), rc)
	if err != nil {
		logrus.WithError(err).WithField("messageID", messageID.Hex()).Error("Failed to build attachment archive")
		response.Error(w, apperrors.Internal("failed to package attachment", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.SanitizeDownloadName(attachment.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	if _, err := bytes.NewReader(archive).WriteTo(w); err != nil {
		logrus.WithError(err).WithField("messageID", messageID.Hex()).Warn("Attachment download interrupted")
	}
}
