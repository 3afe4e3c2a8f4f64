package models

import "time"

type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"_id"`
	Name         string    `bson:"name" json:"name"`
	Username     string    `bson:"username" json:"username"`
	Bio          string    `bson:"bio,omitempty" json:"bio,omitempty"`
	PasswordHash string    `bson:"password" json:"-"`
	Avatar       Avatar    `bson:"avatar" json:"avatar"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// UserBrief is the denormalized projection embedded in realtime payloads
// and list responses.
type UserBrief struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, Avatar: u.Avatar.URL}
}
