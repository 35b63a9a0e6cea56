package model

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	Stance    Stance    `json:"stance"`
	Text      string    `json:"text"`
	GroupID   *int64    `json:"group_id,omitempty"`
	Author    Author    `json:"author"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
