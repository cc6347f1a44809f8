package handlers

import (
	"net/http"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	"github.com/sirupsen/logrus"
)

// GroupHandler serves group chat endpoints.
type GroupHandler struct {
	Service GroupService
	Hub     Pusher
}

func NewGroupHandler(service GroupService, hub Pusher) *GroupHandler {
	return &GroupHandler{Service: service, Hub: hub}
}

type createGroupRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	MemberEmails []string `json:"member_emails" validate:"required,min=1,dive,max=254"`
}

type addMembersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,max=254"`
}

type groupMessageRequest struct {
	Message string `json:"message" validate:"max=5000"`
}

func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.Service.CreateGroup(r.Context(), userID, req.Name, req.MemberEmails)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, "Group created", result)
}

// ListGroupsHandler returns the caller's groups, most recent activity first.
func (h *GroupHandler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	groups, err := h.Service.ListUserGroups(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Groups fetched", groups)
}

func (h *GroupHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	limit, offset := pageParams(r)
	messages, err := h.Service.GetGroupConversation(r.Context(), userID, groupID, limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Group messages fetched", messages)
}

// SendMessageHandler posts to the group and pushes the message to connected members.
func (h *GroupHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req groupMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	msg, err := h.Service.SendGroupMessage(r.Context(), userID, groupID, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}

	if members, err := h.Service.MemberIDs(r.Context(), groupID); err == nil {
		h.Hub.PushToUsers(members, realtime.Event{Type: realtime.EventGroupMessage, Payload: msg})
	} else {
		logrus.WithError(err).WithField("groupID", groupID.Hex()).Warn("Skipping realtime fan-out")
	}
	response.Created(w, "Message sent", msg)
}

func (h *GroupHandler) AddMembersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req addMembersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.Service.AddMembers(r.Context(), userID, groupID, req.Emails)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Members added", result)
}

func (h *GroupHandler) LeaveGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.LeaveGroup(r.Context(), userID, groupID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Left group", nil)
}

// DeleteGroupHandler removes the group with its memberships and messages. Creator only.
func (h *GroupHandler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.DeleteGroup(r.Context(), userID, groupID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Group deleted", nil)
}
