package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/models"
	"github.com/Aryan192003/Chatify-backend/internal/repository"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

// ChatService is the membership engine: it owns the group-chat invariants
// (size bounds, creator authority) and triggers the routed refresh events
// on every membership change.
type ChatService struct {
	chats     repository.ChatRepository
	users     repository.UserRepository
	router    EventRouter
	publisher EventPublisher
	log       *zap.SugaredLogger
}

func NewChatService(
	chats repository.ChatRepository,
	users repository.UserRepository,
	router EventRouter,
	publisher EventPublisher,
	log *zap.SugaredLogger,
) *ChatService {
	return &ChatService{chats: chats, users: users, router: router, publisher: publisher, log: log}
}

// CreateGroup creates a group chat with the creator added automatically,
// so the smallest possible group has three members.
func (s *ChatService) CreateGroup(ctx context.Context, name string, memberIDs []string, creatorID string) (*models.Chat, error) {
	if len(memberIDs) < 2 {
		return nil, apperr.Validation("group chat must have at least 2 members")
	}

	allMembers := make([]string, 0, len(memberIDs)+1)
	seen := make(map[string]struct{}, len(memberIDs)+1)
	for _, m := range append(append([]string(nil), memberIDs...), creatorID) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		allMembers = append(allMembers, m)
	}
	if len(allMembers) < models.MinGroupMembers {
		return nil, apperr.Validation("group chat must have at least 2 members")
	}

	chat := &models.Chat{
		Name:      name,
		GroupChat: true,
		Creator:   creatorID,
		Members:   allMembers,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	s.router.Route(ws.EventAlert, allMembers, "Welcome to "+name+" group")
	s.router.Route(ws.EventRefetchChats, memberIDs, nil)
	s.publishUpdated(ctx, chat.ID, "created", allMembers)
	return chat, nil
}

// AddMembers adds new members to a group. Only the creator may do this;
// duplicates are ignored and the 100-member cap is enforced before any
// write, so a failed add leaves the chat unmodified.
func (s *ChatService) AddMembers(ctx context.Context, chatID string, newMemberIDs []string, requesterID string) error {
	if len(newMemberIDs) < 1 {
		return apperr.Validation("please provide members")
	}
	chat, err := s.groupOwnedBy(ctx, chatID, requesterID, "add members")
	if err != nil {
		return err
	}

	newUsers, err := s.users.FindByIDs(ctx, newMemberIDs)
	if err != nil {
		return err
	}

	var added []*models.User
	for _, u := range newUsers {
		if chat.HasMember(u.ID) {
			continue
		}
		added = append(added, u)
	}
	if len(chat.Members)+len(added) > models.MaxGroupMembers {
		return apperr.Capacity("group members limit reached")
	}
	for _, u := range added {
		chat.Members = append(chat.Members, u.ID)
	}
	if err := s.chats.Save(ctx, chat); err != nil {
		return err
	}

	// The alert names every requested user, duplicates included; members
	// still get their chat list refreshed even when nothing new was added.
	names := make([]string, len(newUsers))
	for i, u := range newUsers {
		names[i] = u.Name
	}
	s.router.Route(ws.EventAlert, chat.Members, strings.Join(names, ", ")+" has been added in the group")
	s.router.Route(ws.EventRefetchChats, chat.Members, nil)
	s.publishUpdated(ctx, chat.ID, "members_added", chat.Members)
	return nil
}

// RemoveMember removes a member from a group. Removal that would shrink
// the group below three members is rejected.
func (s *ChatService) RemoveMember(ctx context.Context, chatID, targetUserID, requesterID string) error {
	chat, err := s.groupOwnedBy(ctx, chatID, requesterID, "remove members")
	if err != nil {
		return err
	}
	if len(chat.Members) <= models.MinGroupMembers {
		return apperr.Capacity("group must have at least 3 members")
	}
	target, err := s.users.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	allMembers := append([]string(nil), chat.Members...)
	chat.Members = without(chat.Members, targetUserID)
	if err := s.chats.Save(ctx, chat); err != nil {
		return err
	}

	s.router.Route(ws.EventAlert, chat.Members, ws.AlertPayload{
		Message: target.Name + " has been removed from the group",
		ChatID:  chatID,
	})
	s.router.Route(ws.EventRefetchChats, allMembers, nil)
	s.publishUpdated(ctx, chat.ID, "member_removed", chat.Members)
	return nil
}

// LeaveGroup removes the requester from the group, subject to the same
// size floor. When the creator leaves, ownership passes to the first
// remaining member in stored order.
func (s *ChatService) LeaveGroup(ctx context.Context, chatID, requesterID string) error {
	chat, err := s.group(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasMember(requesterID) {
		return apperr.Authorization("you are not a member of this group")
	}
	if len(chat.Members) <= models.MinGroupMembers {
		return apperr.Capacity("group must have at least 3 members")
	}

	remaining := without(chat.Members, requesterID)
	if chat.Creator == requesterID {
		chat.Creator = remaining[0]
	}
	chat.Members = remaining
	if err := s.chats.Save(ctx, chat); err != nil {
		return err
	}

	leaver, err := s.users.FindByID(ctx, requesterID)
	name := requesterID
	if err == nil {
		name = leaver.Name
	}
	s.router.Route(ws.EventAlert, remaining, ws.AlertPayload{
		Message: name + " has left the group",
		ChatID:  chatID,
	})
	s.publishUpdated(ctx, chat.ID, "member_left", remaining)
	return nil
}

// RenameGroup changes the group name. Creator only.
func (s *ChatService) RenameGroup(ctx context.Context, chatID, name, requesterID string) error {
	chat, err := s.groupOwnedBy(ctx, chatID, requesterID, "rename the group")
	if err != nil {
		return err
	}
	chat.Name = name
	if err := s.chats.Save(ctx, chat); err != nil {
		return err
	}
	s.router.Route(ws.EventRefetchChats, chat.Members, nil)
	return nil
}

// ChatSummary is the chat-list projection: direct chats borrow the other
// member's name and avatar, groups show up to three member avatars.
type ChatSummary struct {
	ID        string   `json:"_id"`
	GroupChat bool     `json:"groupChat"`
	Name      string   `json:"name"`
	Avatar    []string `json:"avatar"`
	Members   []string `json:"members"`
}

func (s *ChatService) GetMyChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	chats, err := s.chats.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	userByID, err := s.memberIndex(ctx, chats)
	if err != nil {
		return nil, err
	}

	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		sum := ChatSummary{ID: c.ID, GroupChat: c.GroupChat, Name: c.Name}
		for _, m := range c.Members {
			if m != userID {
				sum.Members = append(sum.Members, m)
			}
		}
		if c.GroupChat {
			for _, m := range c.Members {
				if len(sum.Avatar) == 3 {
					break
				}
				if u, ok := userByID[m]; ok {
					sum.Avatar = append(sum.Avatar, u.Avatar.URL)
				}
			}
		} else if other, ok := userByID[c.OtherMember(userID)]; ok {
			sum.Name = other.Name
			sum.Avatar = []string{other.Avatar.URL}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *ChatService) GetMyGroups(ctx context.Context, userID string) ([]ChatSummary, error) {
	chats, err := s.chats.FindGroupsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	userByID, err := s.memberIndex(ctx, chats)
	if err != nil {
		return nil, err
	}

	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		sum := ChatSummary{ID: c.ID, GroupChat: true, Name: c.Name}
		for _, m := range c.Members {
			if len(sum.Avatar) == 3 {
				break
			}
			if u, ok := userByID[m]; ok {
				sum.Avatar = append(sum.Avatar, u.Avatar.URL)
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

// ChatDetails is the populated chat-details projection.
type ChatDetails struct {
	*models.Chat
	MemberDetails []models.UserBrief `json:"memberDetails,omitempty"`
}

func (s *ChatService) GetChatDetails(ctx context.Context, chatID string, populate bool) (*ChatDetails, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, chatErr(err)
	}
	details := &ChatDetails{Chat: chat}
	if populate {
		users, err := s.users.FindByIDs(ctx, chat.Members)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			details.MemberDetails = append(details.MemberDetails, u.Brief())
		}
	}
	return details, nil
}

func (s *ChatService) group(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, chatErr(err)
	}
	if !chat.GroupChat {
		return nil, apperr.Validation("this is not a group chat")
	}
	return chat, nil
}

func (s *ChatService) groupOwnedBy(ctx context.Context, chatID, requesterID, action string) (*models.Chat, error) {
	chat, err := s.group(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Creator != requesterID {
		return nil, apperr.Authorization("you are not allowed to %s", action)
	}
	return chat, nil
}

func (s *ChatService) memberIndex(ctx context.Context, chats []*models.Chat) (map[string]*models.User, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range chats {
		for _, m := range c.Members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			ids = append(ids, m)
		}
	}
	index := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func (s *ChatService) publishUpdated(ctx context.Context, chatID, action string, members []string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChatUpdated(ctx, chatID, action, members); err != nil {
		s.log.Warnw("chat event publish failed", "chat", chatID, "action", action, "err", err)
	}
}

func without(members []string, userID string) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m != userID {
			out = append(out, m)
		}
	}
	return out
}
