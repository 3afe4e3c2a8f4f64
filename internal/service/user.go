package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/auth"
	"github.com/Aryan192003/Chatify-backend/internal/models"
	"github.com/Aryan192003/Chatify-backend/internal/repository"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

// UserService covers accounts, search, and the friend-request flow that
// forms direct chats.
type UserService struct {
	users    repository.UserRepository
	chats    repository.ChatRepository
	requests repository.RequestRepository
	store    AttachmentStore
	router   EventRouter
	tokens   *auth.Manager
	log      *zap.SugaredLogger
}

func NewUserService(
	users repository.UserRepository,
	chats repository.ChatRepository,
	requests repository.RequestRepository,
	store AttachmentStore,
	router EventRouter,
	tokens *auth.Manager,
	log *zap.SugaredLogger,
) *UserService {
	return &UserService{
		users: users, chats: chats, requests: requests,
		store: store, router: router, tokens: tokens, log: log,
	}
}

type SignupInput struct {
	Name     string
	Username string
	Password string
	Bio      string
	Avatar   *File
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	if in.Name == "" || in.Username == "" || in.Password == "" {
		return nil, "", apperr.Validation("please fill all the fields")
	}
	if in.Avatar == nil {
		return nil, "", apperr.Validation("please upload an avatar")
	}

	uploaded, err := s.store.Upload(ctx, in.Avatar.Name, in.Avatar.ContentType, in.Avatar.Data)
	if err != nil {
		return nil, "", apperr.Storage(err, "avatar upload failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		Name:         in.Name,
		Username:     in.Username,
		Bio:          in.Bio,
		PasswordHash: string(hash),
		Avatar:       models.Avatar{PublicID: uploaded.PublicID, URL: uploaded.URL},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", apperr.Conflict("username already taken")
		}
		return nil, "", err
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.Validation("invalid username or password")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.Validation("invalid username or password")
	}
	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// SearchUsers finds users by name, excluding the requester and everyone
// they already share a direct chat with.
func (s *UserService) SearchUsers(ctx context.Context, userID, name string) ([]models.UserBrief, error) {
	direct, err := s.chats.FindDirectByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := []string{userID}
	for _, c := range direct {
		exclude = append(exclude, c.Members...)
	}

	users, err := s.users.SearchByName(ctx, name, exclude)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserBrief, 0, len(users))
	for _, u := range users {
		out = append(out, u.Brief())
	}
	return out, nil
}

// SendFriendRequest creates a request once per unordered user pair and
// nudges the receiver in real time.
func (s *UserService) SendFriendRequest(ctx context.Context, senderID, receiverID string) error {
	if receiverID == "" || receiverID == senderID {
		return apperr.Validation("invalid receiver")
	}
	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	if _, err := s.requests.FindBetween(ctx, senderID, receiverID); err == nil {
		return apperr.Conflict("request already sent")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.requests.Create(ctx, &models.FriendRequest{Sender: senderID, Receiver: receiverID}); err != nil {
		return err
	}
	s.router.Route(ws.EventNewRequest, []string{receiverID}, nil)
	return nil
}

// AcceptFriendRequest accepts or rejects a pending request. Accepting
// forms the direct chat and tells both users to refetch their chat lists;
// either way the request is destroyed.
func (s *UserService) AcceptFriendRequest(ctx context.Context, requestID, userID string, accept bool) (string, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("request not found")
		}
		return "", err
	}
	if req.Receiver != userID {
		return "", apperr.Authorization("you are not authorised to accept this request")
	}
	if !accept {
		return "", s.requests.Delete(ctx, requestID)
	}

	pair, err := s.users.FindByIDs(ctx, []string{req.Sender, req.Receiver})
	if err != nil {
		return "", err
	}
	nameByID := make(map[string]string, len(pair))
	for _, u := range pair {
		nameByID[u.ID] = u.Name
	}

	members := []string{req.Sender, req.Receiver}
	chat := &models.Chat{
		Name:    nameByID[req.Sender] + "-" + nameByID[req.Receiver],
		Members: members,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return "", err
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return "", err
	}

	s.router.Route(ws.EventRefetchChats, members, nil)
	return req.Sender, nil
}

// Notification is a pending friend request with its sender's display
// fields.
type Notification struct {
	ID     string           `json:"_id"`
	Sender models.UserBrief `json:"sender"`
}

func (s *UserService) Notifications(ctx context.Context, userID string) ([]Notification, error) {
	reqs, err := s.requests.FindByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}
	var senderIDs []string
	for _, r := range reqs {
		senderIDs = append(senderIDs, r.Sender)
	}
	out := make([]Notification, 0, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}
	senders, err := s.users.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	briefByID := make(map[string]models.UserBrief, len(senders))
	for _, u := range senders {
		briefByID[u.ID] = u.Brief()
	}
	for _, r := range reqs {
		out = append(out, Notification{ID: r.ID, Sender: briefByID[r.Sender]})
	}
	return out, nil
}

// Friends lists the other member of each of the requester's direct chats.
// With chatID set, friends already in that chat are filtered out (used to
// offer candidates when adding group members).
func (s *UserService) Friends(ctx context.Context, userID, chatID string) ([]models.UserBrief, error) {
	direct, err := s.chats.FindDirectByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	var friendIDs []string
	for _, c := range direct {
		if other := c.OtherMember(userID); other != "" {
			friendIDs = append(friendIDs, other)
		}
	}
	out := make([]models.UserBrief, 0, len(friendIDs))
	if len(friendIDs) == 0 {
		return out, nil
	}
	friends, err := s.users.FindByIDs(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	var inChat map[string]struct{}
	if chatID != "" {
		chat, err := s.chats.FindByID(ctx, chatID)
		if err != nil {
			return nil, chatErr(err)
		}
		inChat = make(map[string]struct{}, len(chat.Members))
		for _, m := range chat.Members {
			inChat[m] = struct{}{}
		}
	}
	for _, u := range friends {
		if inChat != nil {
			if _, ok := inChat[u.ID]; ok {
				continue
			}
		}
		out = append(out, u.Brief())
	}
	return out, nil
}
