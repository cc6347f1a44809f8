package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/repository"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupService implements group chats. Access to a group's messages is
// decided by current membership only.
type GroupService struct {
	tx       Transactor
	repo     GroupStore
	userRepo UserStore
	notifier Notifier
}

func NewGroupService(tx Transactor, repo GroupStore, userRepo UserStore, notifier Notifier) *GroupService {
	return &GroupService{tx: tx, repo: repo, userRepo: userRepo, notifier: notifier}
}

// CreateGroup stores the group with the creator and every resolvable email as
// members, all in one transaction. Unknown emails are reported back.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID primitive.ObjectID, name string, memberEmails []string) (*models.MembershipResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrGroupNameRequired
	}
	emails := normalizeEmails(memberEmails)
	if len(emails) == 0 {
		return nil, apperrors.ErrGroupMembersRequired
	}
	fields := logrus.Fields{"creatorID": creatorID.Hex()}

	found, notFound, err := s.resolveEmails(ctx, emails)
	if err != nil {
		return nil, internalError("CreateGroup.ResolveEmails", err, fields)
	}

	var result *models.MembershipResult
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		group, err := s.repo.CreateGroup(txCtx, &models.Group{Name: name, CreatedBy: creatorID})
		if err != nil {
			return err
		}
		if _, err := s.repo.AddMember(txCtx, group.ID, creatorID); err != nil {
			return err
		}
		result, err = s.addResolved(txCtx, group, found)
		return err
	})
	if err != nil {
		return nil, internalError("CreateGroup.Transaction", err, fields)
	}
	result.NotFoundEmails = notFound

	s.notifyAdded(ctx, result)
	logrus.WithFields(fields).WithFields(logrus.Fields{
		"groupID": result.Group.ID.Hex(),
		"added":   len(result.Added),
	}).Info("Group created")
	return result, nil
}

// AddMembers lets any current member add users by email.
func (s *GroupService) AddMembers(ctx context.Context, actingUserID, groupID primitive.ObjectID, emails []string) (*models.MembershipResult, error) {
	emails = normalizeEmails(emails)
	if len(emails) == 0 {
		return nil, apperrors.ErrGroupMembersRequired
	}
	fields := logrus.Fields{"userID": actingUserID.Hex(), "groupID": groupID.Hex()}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}

	found, notFound, err := s.resolveEmails(ctx, emails)
	if err != nil {
		return nil, internalError("AddMembers.ResolveEmails", err, fields)
	}

	result, err := s.addResolved(ctx, group, found)
	if err != nil {
		return nil, internalError("AddMembers.AddMember", err, fields)
	}
	result.NotFoundEmails = notFound

	s.notifyAdded(ctx, result)
	logrus.WithFields(fields).WithField("added", len(result.Added)).Info("Group members added")
	return result, nil
}

// SendGroupMessage posts text to the group on behalf of a current member.
func (s *GroupService) SendGroupMessage(ctx context.Context, senderID, groupID primitive.ObjectID, text string) (*models.GroupMessage, error) {
	if err := s.requireMember(ctx, groupID, senderID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyGroupMessage
	}

	msg, err := s.repo.SendMessage(ctx, &models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Text:     text,
	})
	if err != nil {
		return nil, internalError("SendGroupMessage", err, logrus.Fields{"userID": senderID.Hex(), "groupID": groupID.Hex()})
	}
	return msg, nil
}

// GetGroupConversation returns one page of group messages oldest first, cut
// from the newest end like direct conversations.
func (s *GroupService) GetGroupConversation(ctx context.Context, userID, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	limit, offset = Page(limit, offset)
	messages, err := s.repo.GetMessages(ctx, groupID, limit, offset)
	if err != nil {
		return nil, internalError("GetGroupConversation", err, logrus.Fields{"userID": userID.Hex(), "groupID": groupID.Hex()})
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListUserGroups returns the user's groups with member counts and the latest
// message, most recent activity first. Groups without messages come last.
func (s *GroupService) ListUserGroups(ctx context.Context, userID primitive.ObjectID) ([]models.GroupSummary, error) {
	fields := logrus.Fields{"userID": userID.Hex()}

	ids, err := s.repo.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, internalError("ListUserGroups.Memberships", err, fields)
	}
	if len(ids) == 0 {
		return []models.GroupSummary{}, nil
	}

	groups, err := s.repo.GetGroupsByIDs(ctx, ids)
	if err != nil {
		return nil, internalError("ListUserGroups.Groups", err, fields)
	}
	counts, err := s.repo.CountMembers(ctx, ids)
	if err != nil {
		return nil, internalError("ListUserGroups.CountMembers", err, fields)
	}
	last, err := s.repo.LastMessages(ctx, ids)
	if err != nil {
		return nil, internalError("ListUserGroups.LastMessages", err, fields)
	}

	senderIDs := make([]primitive.ObjectID, 0, len(last))
	for _, m := range last {
		senderIDs = append(senderIDs, m.SenderID)
	}
	senders, err := lookupPublicUsers(ctx, s.userRepo, senderIDs)
	if err != nil {
		return nil, internalError("ListUserGroups.Senders", err, fields)
	}

	summaries := make([]models.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summary := models.GroupSummary{Group: g, MemberCount: counts[g.ID]}
		if m, ok := last[g.ID]; ok {
			summary.LastMessage = &models.LastMessage{
				Text:       m.Text,
				SenderID:   m.SenderID,
				SenderName: senders[m.SenderID].Name,
				CreatedAt:  m.CreatedAt,
			}
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		switch {
		case a == nil && b == nil:
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
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

// LeaveGroup removes the user's membership. The creator may leave too; the
// group keeps its created_by.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID primitive.ObjectID) error {
	removed, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return internalError("LeaveGroup", err, logrus.Fields{"userID": userID.Hex(), "groupID": groupID.Hex()})
	}
	if !removed {
		return apperrors.ErrMembershipNotFound
	}

	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "groupID": groupID.Hex()}).Info("User left group")
	return nil
}

// DeleteGroup removes memberships, then messages, then the group itself in
// one transaction. Only the creator may do this.
func (s *GroupService) DeleteGroup(ctx context.Context, actingUserID, groupID primitive.ObjectID) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actingUserID {
		return apperrors.ErrNotGroupCreator
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.DeleteMembers(txCtx, groupID); err != nil {
			return err
		}
		if _, err := s.repo.DeleteMessages(txCtx, groupID); err != nil {
			return err
		}
		deleted, err := s.repo.DeleteGroup(txCtx, groupID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperrors.ErrGroupNotFound
		}
		return nil
	})
	if err != nil {
		return internalError("DeleteGroup.Transaction", err, logrus.Fields{"userID": actingUserID.Hex(), "groupID": groupID.Hex()})
	}

	logrus.WithFields(logrus.Fields{"userID": actingUserID.Hex(), "groupID": groupID.Hex()}).Info("Group deleted")
	return nil
}

// MemberIDs returns the current members of a group, for realtime fan-out.
func (s *GroupService) MemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids, err := s.repo.ListMemberIDs(ctx, groupID)
	if err != nil {
		return nil, internalError("MemberIDs", err, logrus.Fields{"groupID": groupID.Hex()})
	}
	return ids, nil
}

func (s *GroupService) getGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, internalError("GetGroupByID", err, logrus.Fields{"groupID": groupID.Hex()})
	}
	return group, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	ok, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return internalError("IsMember", err, logrus.Fields{"userID": userID.Hex(), "groupID": groupID.Hex()})
	}
	if !ok {
		return apperrors.ErrNotGroupMember
	}
	return nil
}

// resolveEmails splits emails into registered users and unknown addresses.
func (s *GroupService) resolveEmails(ctx context.Context, emails []string) ([]models.User, []string, error) {
	users, err := s.userRepo.GetUsersByEmails(ctx, emails)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.Email] = true
	}
	notFound := []string{}
	for _, e := range emails {
		if !known[e] {
			notFound = append(notFound, e)
		}
	}
	return users, notFound, nil
}

// addResolved inserts each user as a member. Users that already belong to the
// group are reported separately and not inserted again.
func (s *GroupService) addResolved(ctx context.Context, group *models.Group, users []models.User) (*models.MembershipResult, error) {
	result := &models.MembershipResult{
		Group:          group,
		Added:          []models.PublicUser{},
		NotFoundEmails: []string{},
	}
	for i := range users {
		added, err := s.repo.AddMember(ctx, group.ID, users[i].ID)
		if err != nil {
			return nil, err
		}
		if added {
			result.Added = append(result.Added, users[i].Public())
		} else {
			result.AlreadyMembers = append(result.AlreadyMembers, users[i].Public())
		}
	}
	return result, nil
}

func (s *GroupService) notifyAdded(ctx context.Context, result *models.MembershipResult) {
	for _, u := range result.Added {
		s.notifier.Notify(ctx, u.ID, models.NotifyGroupMemberAdded,
			"Added to a group",
			fmt.Sprintf("You were added to the group %q.", result.Group.Name),
			&result.Group.ID)
	}
}
