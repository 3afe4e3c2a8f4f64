package models

import "time"

type Attachment struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type Message struct {
	ID          string       `bson:"_id,omitempty" json:"_id"`
	ChatID      string       `bson:"chat" json:"chat"`
	SenderID    string       `bson:"sender" json:"sender"`
	Content     string       `bson:"content" json:"content"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"createdAt"`
}

// RealtimeMessage is the transient projection broadcast over the socket.
// Its ID is generated at send time and is independent of the persisted
// document's ID; the sender fields are denormalized so clients need no
// extra lookup.
type RealtimeMessage struct {
	ID          string       `json:"_id"`
	ChatID      string       `json:"chat"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Sender      UserBrief    `json:"sender"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type FriendRequest struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Sender    string    `bson:"sender" json:"sender"`
	Receiver  string    `bson:"receiver" json:"receiver"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
