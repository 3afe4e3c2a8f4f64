package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

// Producer publishes persisted-message and membership-change events for
// downstream consumers (notification workers, analytics). Publish failures
// are the caller's to log; the live broadcast never depends on them.
type Producer struct {
	messages *kafka.Writer
	chats    *kafka.Writer
}

func NewProducer(brokers []string, messageTopic, chatTopic string) *Producer {
	return &Producer{
		messages: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    messageTopic,
			Balancer: &kafka.LeastBytes{},
		},
		chats: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    chatTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Producer) PublishMessagePersisted(ctx context.Context, m *models.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return p.messages.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.ChatID),
		Value: b,
		Time:  time.Now(),
	})
}

type chatEvent struct {
	ChatID  string   `json:"chat_id"`
	Action  string   `json:"action"`
	Members []string `json:"members"`
}

func (p *Producer) PublishChatUpdated(ctx context.Context, chatID, action string, members []string) error {
	b, err := json.Marshal(chatEvent{ChatID: chatID, Action: action, Members: members})
	if err != nil {
		return err
	}
	return p.chats.WriteMessages(ctx, kafka.Message{
		Key:   []byte(chatID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if err := p.messages.Close(); err != nil {
		return err
	}
	return p.chats.Close()
}
