package service

import (
	"context"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

// EventRouter fans a named event out to the live connections of the given
// users. Implemented by ws.Router.
type EventRouter interface {
	Route(event string, users []string, data any)
}

// AttachmentStore is the object storage used for attachments and avatars.
// Implemented by storage.S3Store.
type AttachmentStore interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (models.Attachment, error)
	Delete(ctx context.Context, publicIDs []string) error
}

// EventPublisher emits domain events for downstream consumers. Implemented
// by events.Producer. Publish failures never fail the user-facing
// operation.
type EventPublisher interface {
	PublishMessagePersisted(ctx context.Context, m *models.Message) error
	PublishChatUpdated(ctx context.Context, chatID, action string, members []string) error
}

// File is an uploaded file as received from the HTTP layer.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
