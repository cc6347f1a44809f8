package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type chatHandlerFixture struct {
	handler *ChatHandler
	svc     *mockChatService
	files   *mockAttachmentStore
	hub     *recordingPusher
}

func newChatHandlerFixture(t *testing.T) *chatHandlerFixture {
	f := &chatHandlerFixture{
		svc:   &mockChatService{},
		files: &mockAttachmentStore{},
		hub:   &recordingPusher{},
	}
	f.handler = NewChatHandler(f.svc, f.files, f.hub, 1<<20)
	t.Cleanup(func() {
		f.svc.AssertExpectations(t)
		f.files.AssertExpectations(t)
	})
	return f
}

func multipartBody(t *testing.T, text, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("message", text))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestGetMessagesHandler_MarksRead(t *testing.T) {
	me, friend := primitive.NewObjectID(), primitive.NewObjectID()
	f := newChatHandlerFixture(t)
	f.svc.On("GetConversation", mock.Anything, me, friend, 20, 40).
		Return([]models.Message{{Text: "m1"}, {Text: "m2"}}, nil)
	f.svc.On("MarkRead", mock.Anything, me, friend).Return(int64(2), nil)

	rec := httptest.NewRecorder()
	f.handler.GetMessagesHandler(rec, newRequest(http.MethodGet, "/chat/x/messages?limit=20&offset=40", nil, me,
		map[string]string{"friendId": friend.Hex()}))

	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(readEnvelope(t, rec).Data, &msgs))
	assert.Len(t, msgs, 2)
}

func TestGetMessagesHandler_ForbiddenSkipsMarkRead(t *testing.T) {
	me, stranger := primitive.NewObjectID(), primitive.NewObjectID()
	f := newChatHandlerFixture(t)
	f.svc.On("GetConversation", mock.Anything, me, stranger, 0, 0).Return(nil, apperrors.ErrNotFriends)

	rec := httptest.NewRecorder()
	f.handler.GetMessagesHandler(rec, newRequest(http.MethodGet, "/", nil, me,
		map[string]string{"friendId": stranger.Hex()}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.svc.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageHandler_JSON(t *testing.T) {
	me, friend := primitive.NewObjectID(), primitive.NewObjectID()
	f := newChatHandlerFixture(t)
	sent := &models.Message{ID: primitive.NewObjectID(), SenderID: me, ReceiverID: friend, Text: "hi"}
	f.svc.On("SendMessage", mock.Anything, me, friend, "hi", (*models.Attachment)(nil)).Return(sent, nil)

	rec := httptest.NewRecorder()
	f.handler.SendMessageHandler(rec, newRequest(http.MethodPost, "/", jsonBody(`{"message":"hi"}`), me,
		map[string]string{"friendId": friend.Hex()}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.hub.events, 1)
	assert.Equal(t, realtime.EventMessage, f.hub.events[0].Event.Type)
	assert.ElementsMatch(t, []primitive.ObjectID{me, friend}, f.hub.events[0].UserIDs)
}

func TestSendMessageHandler_Multipart(t *testing.T) {
	me, friend := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("stores attachment", func(t *testing.T) {
		f := newChatHandlerFixture(t)
		f.files.On("Save", "lecture notes", "notes.txt").Return("stored.txt", int64(13), nil)
		f.svc.On("SendMessage", mock.Anything, me, friend, "see attached", mock.MatchedBy(func(a *models.Attachment) bool {
			return a != nil && a.Path == "stored.txt" && a.Name == "notes.txt" && a.Size == 13 && a.MimeType != ""
		})).Return(&models.Message{ID: primitive.NewObjectID(), SenderID: me, ReceiverID: friend}, nil)

		body, contentType := multipartBody(t, "see attached", "notes.txt", "lecture notes")
		req := newRequest(http.MethodPost, "/", body, me, map[string]string{"friendId": friend.Hex()})
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.handler.SendMessageHandler(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("rejected send removes stored file", func(t *testing.T) {
		f := newChatHandlerFixture(t)
		f.files.On("Save", "x", "a.bin").Return("stored.bin", int64(1), nil)
		f.files.On("Remove", "stored.bin").Return(nil)
		f.svc.On("SendMessage", mock.Anything, me, friend, "", mock.Anything).Return(nil, apperrors.ErrNotFriends)

		body, contentType := multipartBody(t, "", "a.bin", "x")
		req := newRequest(http.MethodPost, "/", body, me, map[string]string{"friendId": friend.Hex()})
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.handler.SendMessageHandler(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, f.hub.events)
	})

	t.Run("oversized file", func(t *testing.T) {
		f := newChatHandlerFixture(t)
		f.handler.MaxUploadBytes = 8

		body, contentType := multipartBody(t, "", "big.bin", strings.Repeat("z", 64))
		req := newRequest(http.MethodPost, "/", body, me, map[string]string{"friendId": friend.Hex()})
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.handler.SendMessageHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestDownloadAttachmentHandler(t *testing.T) {
	me, msgID := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("zip with sanitized name", func(t *testing.T) {
		f := newChatHandlerFixture(t)
		f.svc.On("OpenAttachment", mock.Anything, me, msgID).
			Return(&models.Attachment{Name: "week<1> notes.pdf"}, io.NopCloser(strings.NewReader("pdf-bytes")), nil)

		rec := httptest.NewRecorder()
		f.handler.DownloadAttachmentHandler(rec, newRequest(http.MethodGet, "/", nil, me,
			map[string]string{"id": msgID.Hex()}))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="week1 notes.pdf.zip"`, rec.Header().Get("Content-Disposition"))

		zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)
		assert.Equal(t, "week<1> notes.pdf", zr.File[0].Name)
		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		defer rc.Close()
		content, _ := io.ReadAll(rc)
		assert.Equal(t, "pdf-bytes", string(content))
	})

	t.Run("stranger", func(t *testing.T) {
		f := newChatHandlerFixture(t)
		f.svc.On("OpenAttachment", mock.Anything, me, msgID).Return(nil, nil, apperrors.ErrAttachmentForbidden)

		rec := httptest.NewRecorder()
		f.handler.DownloadAttachmentHandler(rec, newRequest(http.MethodGet, "/", nil, me,
			map[string]string{"id": msgID.Hex()}))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, string(apperrors.CodeForbidden), readEnvelope(t, rec).Error)
	})
}
