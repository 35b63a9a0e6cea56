package store

import (
	"context"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

type roomStore struct {
	q db.Querier
}

func newRoomStore(q db.Querier) RoomStore {
	return &roomStore{q: q}
}

func (s *roomStore) Create(ctx context.Context, room model.Room) (model.Room, error) {
	if room.ID == 0 {
		room.ID = id.New()
	}
	err := s.q.QueryRow(ctx, `
		INSERT INTO rooms (id, topic, slug)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		room.ID, room.Topic, room.Slug,
	).Scan(&room.CreatedAt)
	if err != nil {
		return model.Room{}, wrapErr("create room", err)
	}
	return room, nil
}

func (s *roomStore) GetByID(ctx context.Context, roomID int64) (model.Room, error) {
	var room model.Room
	err := s.q.QueryRow(ctx, `
		SELECT id, topic, slug, created_at FROM rooms WHERE id = $1`, roomID,
	).Scan(&room.ID, &room.Topic, &room.Slug, &room.CreatedAt)
	if err != nil {
		return model.Room{}, wrapErr("get room", err)
	}
	return room, nil
}
