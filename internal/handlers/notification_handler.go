package handlers

import (
	"net/http"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
)

type NotificationHandler struct {
	Service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Notifications fetched", notifications)
}

// PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	notifID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), notifID, userID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Notification marked as read", nil)
}

// DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	notifID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.DeleteNotification(r.Context(), notifID, userID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Notification deleted", nil)
}
