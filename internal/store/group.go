package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

const groupColumns = `id, room_id, stance, label, title, description, comment_ids,
	counter_group_id, display_order, created_at, updated_at`

type groupStore struct {
	q db.Querier
}

func newGroupStore(q db.Querier) GroupStore {
	return &groupStore{q: q}
}

func (s *groupStore) Create(ctx context.Context, group model.Group) (model.Group, error) {
	if group.ID == 0 {
		group.ID = id.New()
	}
	commentIDs := group.CommentIDs
	if commentIDs == nil {
		commentIDs = []int64{}
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO opinion_groups
			(id, room_id, stance, label, title, description, comment_ids, counter_group_id, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+groupColumns,
		group.ID, group.RoomID, string(group.Stance), group.Label, group.Title, group.Description,
		commentIDs, group.CounterGroupID, group.DisplayOrder,
	)
	created, err := scanGroup(row)
	if err != nil {
		return model.Group{}, wrapErr("create group", err)
	}
	return created, nil
}

func (s *groupStore) GetByID(ctx context.Context, groupID int64) (model.Group, error) {
	row := s.q.QueryRow(ctx, `SELECT `+groupColumns+` FROM opinion_groups WHERE id = $1`, groupID)
	group, err := scanGroup(row)
	if err != nil {
		return model.Group{}, wrapErr("get group", err)
	}
	return group, nil
}

func (s *groupStore) ListByRoom(ctx context.Context, roomID int64) ([]model.Group, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+groupColumns+` FROM opinion_groups
		WHERE room_id = $1
		ORDER BY id`, roomID)
	if err != nil {
		return nil, wrapErr("list groups", err)
	}
	return collectGroups(rows)
}

func (s *groupStore) ListByRoomAndStance(ctx context.Context, roomID int64, stance model.Stance) ([]model.Group, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+groupColumns+` FROM opinion_groups
		WHERE room_id = $1 AND stance = $2
		ORDER BY id`, roomID, string(stance))
	if err != nil {
		return nil, wrapErr("list groups by stance", err)
	}
	return collectGroups(rows)
}

// AppendComment keeps comment_ids a set: appending a present id is a no-op.
func (s *groupStore) AppendComment(ctx context.Context, groupID, commentID int64) (model.Group, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE opinion_groups
		SET comment_ids = CASE
				WHEN $2 = ANY(comment_ids) THEN comment_ids
				ELSE array_append(comment_ids, $2::BIGINT)
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+groupColumns, groupID, commentID)
	group, err := scanGroup(row)
	if err != nil {
		return model.Group{}, wrapErr("append comment", err)
	}
	return group, nil
}

func (s *groupStore) RemoveComment(ctx context.Context, groupID, commentID int64) (model.Group, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE opinion_groups
		SET comment_ids = array_remove(comment_ids, $2::BIGINT), updated_at = NOW()
		WHERE id = $1
		RETURNING `+groupColumns, groupID, commentID)
	group, err := scanGroup(row)
	if err != nil {
		return model.Group{}, wrapErr("remove comment", err)
	}
	return group, nil
}

func (s *groupStore) UpdateContent(ctx context.Context, groupID int64, label, title, description string) (model.Group, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE opinion_groups
		SET label = $2, title = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+groupColumns, groupID, label, title, description)
	group, err := scanGroup(row)
	if err != nil {
		return model.Group{}, wrapErr("update group content", err)
	}
	return group, nil
}

func (s *groupStore) UpdateLink(ctx context.Context, groupID int64, counterGroupID *int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE opinion_groups SET counter_group_id = $2, updated_at = NOW() WHERE id = $1`,
		groupID, counterGroupID)
	if err != nil {
		return wrapErr("update group link", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *groupStore) UpdateOrder(ctx context.Context, groupID int64, displayOrder float64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE opinion_groups SET display_order = $2, updated_at = NOW() WHERE id = $1`,
		groupID, displayOrder)
	if err != nil {
		return wrapErr("update group order", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *groupStore) Delete(ctx context.Context, groupID int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM opinion_groups WHERE id = $1`, groupID)
	if err != nil {
		return wrapErr("delete group", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *groupStore) MaxDisplayOrder(ctx context.Context, roomID int64, stance model.Stance) (float64, bool, error) {
	var maxOrder *float64
	err := s.q.QueryRow(ctx, `
		SELECT MAX(display_order) FROM opinion_groups
		WHERE room_id = $1 AND stance = $2`, roomID, string(stance),
	).Scan(&maxOrder)
	if err != nil {
		return 0, false, wrapErr("max display order", err)
	}
	if maxOrder == nil {
		return 0, false, nil
	}
	return *maxOrder, true, nil
}

func scanGroup(row pgx.Row) (model.Group, error) {
	var (
		g      model.Group
		stance string
	)
	err := row.Scan(
		&g.ID, &g.RoomID, &stance, &g.Label, &g.Title, &g.Description, &g.CommentIDs,
		&g.CounterGroupID, &g.DisplayOrder, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return model.Group{}, err
	}
	g.Stance = model.Stance(stance)
	if g.CommentIDs == nil {
		g.CommentIDs = []int64{}
	}
	return g, nil
}

func collectGroups(rows pgx.Rows) ([]model.Group, error) {
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, wrapErr("scan group", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate groups", err)
	}
	return groups, nil
}
