package dto

import (
	"strconv"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

type CreateRoomRequest struct {
	Topic string `json:"topic" binding:"required,min=1,max=500"`
}

type RoomResponse struct {
	ID        int64     `json:"id,string"`
	Topic     string    `json:"topic"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func ToRoomResponse(r model.Room) RoomResponse {
	return RoomResponse{ID: r.ID, Topic: r.Topic, Slug: r.Slug, CreatedAt: r.CreatedAt}
}

type CreateGroupRequest struct {
	Stance string `json:"stance" binding:"required"`
	Label  string `json:"label" binding:"required,min=1,max=255"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	s := formatID(*id)
	return &s
}
