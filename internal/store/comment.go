package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

const commentColumns = `id, room_id, stance, text, group_id, author_kind, author_id,
	likes, dislikes, created_at, updated_at`

type commentStore struct {
	q db.Querier
}

func newCommentStore(q db.Querier) CommentStore {
	return &commentStore{q: q}
}

func (s *commentStore) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	if c.ID == 0 {
		c.ID = id.New()
	}
	likes, dislikes := c.Likes, c.Dislikes
	if likes == nil {
		likes = []string{}
	}
	if dislikes == nil {
		dislikes = []string{}
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO comments (id, room_id, stance, text, group_id, author_kind, author_id, likes, dislikes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+commentColumns,
		c.ID, c.RoomID, string(c.Stance), c.Text, c.GroupID, string(c.Author.Kind), c.Author.ID, likes, dislikes,
	)
	created, err := scanComment(row)
	if err != nil {
		return model.Comment{}, wrapErr("create comment", err)
	}
	return created, nil
}

func (s *commentStore) GetByID(ctx context.Context, commentID int64) (model.Comment, error) {
	row := s.q.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID)
	c, err := scanComment(row)
	if err != nil {
		return model.Comment{}, wrapErr("get comment", err)
	}
	return c, nil
}

func (s *commentStore) AssignToGroup(ctx context.Context, commentID, groupID int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE comments SET group_id = $2, updated_at = NOW() WHERE id = $1`, commentID, groupID)
	if err != nil {
		return wrapErr("assign comment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) Detach(ctx context.Context, commentID int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE comments SET group_id = NULL, updated_at = NOW() WHERE id = $1`, commentID)
	if err != nil {
		return wrapErr("detach comment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) Delete(ctx context.Context, commentID int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return wrapErr("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) ListByGroup(ctx context.Context, groupID int64) ([]model.Comment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, wrapErr("list comments by group", err)
	}
	return collectComments(rows)
}

func (s *commentStore) ListByRoom(ctx context.Context, roomID int64) ([]model.Comment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE room_id = $1 ORDER BY id`, roomID)
	if err != nil {
		return nil, wrapErr("list comments by room", err)
	}
	return collectComments(rows)
}

func scanComment(row pgx.Row) (model.Comment, error) {
	var (
		c                  model.Comment
		stance, authorKind string
	)
	err := row.Scan(
		&c.ID, &c.RoomID, &stance, &c.Text, &c.GroupID, &authorKind, &c.Author.ID,
		&c.Likes, &c.Dislikes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Comment{}, err
	}
	c.Stance = model.Stance(stance)
	c.Author.Kind = model.AuthorKind(authorKind)
	return c, nil
}

func collectComments(rows pgx.Rows) ([]model.Comment, error) {
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, wrapErr("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate comments", err)
	}
	return comments, nil
}
