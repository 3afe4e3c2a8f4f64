package models

import "time"

const (
	// Group size bounds enforced by the membership engine. A group always
	// includes its creator, so the floor is three and removal below it is
	// rejected.
	MinGroupMembers = 3
	MaxGroupMembers = 100
)

type Chat struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	GroupChat bool      `bson:"group_chat" json:"groupChat"`
	Creator   string    `bson:"creator,omitempty" json:"creator,omitempty"`
	Members   []string  `bson:"members" json:"members"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// OtherMember returns the counterpart of userID in a direct chat.
func (c *Chat) OtherMember(userID string) string {
	for _, m := range c.Members {
		if m != userID {
			return m
		}
	}
	return ""
}
