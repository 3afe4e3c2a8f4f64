package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/models"
	"github.com/Aryan192003/Chatify-backend/internal/repository"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

const (
	historyPageSize = 20
	maxAttachments  = 5
)

// MessageService is the message pipeline: validate, broadcast, persist.
type MessageService struct {
	chats     repository.ChatRepository
	messages  repository.MessageRepository
	users     repository.UserRepository
	store     AttachmentStore
	router    EventRouter
	publisher EventPublisher
	log       *zap.SugaredLogger
}

func NewMessageService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	store AttachmentStore,
	router EventRouter,
	publisher EventPublisher,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		chats: chats, messages: messages, users: users,
		store: store, router: router, publisher: publisher, log: log,
	}
}

// SendMessage broadcasts a text message to the chat's members and then
// persists it. The broadcast does not wait on the database: real-time
// delivery is best-effort even when durability fails, and a persistence
// failure is logged, not surfaced to the sender.
func (s *MessageService) SendMessage(ctx context.Context, chatID, senderID, content string) error {
	chat, sender, err := s.senderInChat(ctx, chatID, senderID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rt := &models.RealtimeMessage{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Content:   content,
		Sender:    sender.Brief(),
		CreatedAt: now,
	}
	s.broadcast(chat, rt)

	msg := &models.Message{ChatID: chatID, SenderID: senderID, Content: content, CreatedAt: now}
	if err := s.messages.Insert(ctx, msg); err != nil {
		s.log.Errorw("message persist failed", "chat", chatID, "sender", senderID, "err", err)
		return nil
	}
	s.publishPersisted(ctx, msg)
	return nil
}

// SendAttachments uploads the files to object storage, persists the
// message, and broadcasts it. Unlike SendMessage, persistence is awaited:
// the caller needs the stored message in the response. Any upload failure
// aborts the whole operation before anything is broadcast.
func (s *MessageService) SendAttachments(ctx context.Context, chatID, senderID string, files []File) (*models.Message, error) {
	if len(files) < 1 {
		return nil, apperr.Validation("please provide attachments")
	}
	if len(files) > maxAttachments {
		return nil, apperr.Validation("attachments should not be more than %d", maxAttachments)
	}
	chat, sender, err := s.senderInChat(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	attachments := make([]models.Attachment, 0, len(files))
	for _, f := range files {
		att, err := s.store.Upload(ctx, f.Name, f.ContentType, f.Data)
		if err != nil {
			return nil, apperr.Storage(err, "attachment upload failed")
		}
		attachments = append(attachments, att)
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ChatID:      chatID,
		SenderID:    senderID,
		Attachments: attachments,
		CreatedAt:   now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "could not save message")
	}

	rt := &models.RealtimeMessage{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		Attachments: attachments,
		Sender:      sender.Brief(),
		CreatedAt:   now,
	}
	s.broadcast(chat, rt)
	s.publishPersisted(ctx, msg)
	return msg, nil
}

// FetchHistory returns page (1-based) of the chat's messages in ascending
// creation order, 20 per page, plus the total page count.
func (s *MessageService) FetchHistory(ctx context.Context, chatID string, page int) ([]*models.Message, int, error) {
	if page < 1 {
		page = 1
	}
	if _, err := s.chats.FindByID(ctx, chatID); err != nil {
		return nil, 0, chatErr(err)
	}

	skip := int64(page-1) * historyPageSize
	msgs, err := s.messages.FindPage(ctx, chatID, skip, historyPageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.messages.Count(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	// Window is fetched newest-first; clients want it ascending.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	totalPages := int((total + historyPageSize - 1) / historyPageSize)
	return msgs, totalPages, nil
}

// DeleteChat removes the chat, its messages, and their stored attachments,
// then tells the former members to refetch their chat lists.
func (s *MessageService) DeleteChat(ctx context.Context, chatID, requesterID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return chatErr(err)
	}
	if chat.GroupChat && chat.Creator != requesterID {
		return apperr.Authorization("you are not allowed to delete the group")
	}
	if !chat.GroupChat && !chat.HasMember(requesterID) {
		return apperr.Authorization("you are not allowed to delete the chat")
	}

	members := append([]string(nil), chat.Members...)

	withAttachments, err := s.messages.FindWithAttachments(ctx, chatID)
	if err != nil {
		return err
	}
	var publicIDs []string
	for _, m := range withAttachments {
		for _, a := range m.Attachments {
			publicIDs = append(publicIDs, a.PublicID)
		}
	}
	if len(publicIDs) > 0 {
		if err := s.store.Delete(ctx, publicIDs); err != nil {
			return apperr.Storage(err, "attachment delete failed")
		}
	}

	if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return err
	}

	s.router.Route(ws.EventRefetchChats, members, nil)
	if s.publisher != nil {
		if err := s.publisher.PublishChatUpdated(ctx, chatID, "deleted", members); err != nil {
			s.log.Warnw("chat event publish failed", "chat", chatID, "err", err)
		}
	}
	return nil
}

// senderInChat validates the chat exists and the sender is a member.
func (s *MessageService) senderInChat(ctx context.Context, chatID, senderID string) (*models.Chat, *models.User, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, nil, chatErr(err)
	}
	if !chat.HasMember(senderID) {
		return nil, nil, apperr.Authorization("you are not a member of this chat")
	}
	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperr.NotFound("user not found")
		}
		return nil, nil, err
	}
	return chat, sender, nil
}

func (s *MessageService) broadcast(chat *models.Chat, rt *models.RealtimeMessage) {
	s.router.Route(ws.EventNewMessage, chat.Members, ws.NewMessagePayload{ChatID: chat.ID, Message: rt})
	s.router.Route(ws.EventNewMessageAlert, chat.Members, ws.NewMessageAlertPayload{ChatID: chat.ID})
}

func (s *MessageService) publishPersisted(ctx context.Context, msg *models.Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMessagePersisted(ctx, msg); err != nil {
		s.log.Warnw("message event publish failed", "chat", msg.ChatID, "err", err)
	}
}

func chatErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	return err
}
