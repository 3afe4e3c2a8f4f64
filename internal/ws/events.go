package ws

import (
	"encoding/json"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

// Socket event names, shared with the frontend.
const (
	EventNewMessage      = "NEW_MESSAGE"
	EventNewMessageAlert = "NEW_MESSAGE_ALERT"
	EventChatJoined      = "CHAT_JOINED"
	EventChatLeaved      = "CHAT_LEAVED"
	EventOnlineUsers     = "ONLINE_USERS"
	EventAlert           = "ALERT"
	EventRefetchChats    = "REFETCH_CHATS"
	EventNewRequest      = "NEW_REQUEST"
)

// Envelope frames every message on the socket in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEnvelope defers payload decoding until the event is known.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewMessagePayload is broadcast to chat members when a message is sent.
type NewMessagePayload struct {
	ChatID  string                  `json:"chatId"`
	Message *models.RealtimeMessage `json:"message"`
}

type NewMessageAlertPayload struct {
	ChatID string `json:"chatId"`
}

// newMessageIn is the client's NEW_MESSAGE payload. The members list the
// client supplies is ignored for routing; membership comes from the chat
// record.
type newMessageIn struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
	Message string   `json:"message"`
}

// presenceIn is the client's CHAT_JOINED / CHAT_LEAVED payload.
type presenceIn struct {
	UserID  string   `json:"userId"`
	Members []string `json:"members"`
}

// AlertPayload carries group notices. ChatID is empty for plain notices
// (e.g. the group welcome message).
type AlertPayload struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}
