package model

import "time"

type Room struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
