package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// Service tries the index first and falls back to scanning the room's groups.
type Service struct {
	index  Index
	groups store.GroupStore
}

// NewService creates a search service. index may be nil when no search
// server is configured.
func NewService(index Index, groups store.GroupStore) *Service {
	return &Service{index: index, groups: groups}
}

// Search returns non-empty groups of q.RoomID matching q.Text. Index hits for
// groups that no longer exist, or that belong elsewhere, are dropped.
func (s *Service) Search(ctx context.Context, q Query) ([]model.Group, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return []model.Group{}, nil
	}
	q.Text = text

	if s.index != nil && s.index.Healthy() {
		groups, err := s.searchIndex(ctx, q)
		if err == nil {
			return groups, nil
		}
		slog.WarnContext(ctx, "search index failed, falling back to store scan", "error", err)
	}

	return s.scan(ctx, q)
}

func (s *Service) searchIndex(ctx context.Context, q Query) ([]model.Group, error) {
	ids, err := s.index.SearchGroups(q)
	if err != nil {
		return nil, err
	}

	groups := make([]model.Group, 0, len(ids))
	for _, id := range ids {
		g, err := s.groups.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading group %d: %w", id, err)
		}
		if g.RoomID != q.RoomID || g.IsEmpty() {
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// scan matches case-insensitively against label, title and description.
func (s *Service) scan(ctx context.Context, q Query) ([]model.Group, error) {
	all, err := s.groups.ListByRoom(ctx, q.RoomID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	needle := strings.ToLower(q.Text)
	groups := make([]model.Group, 0)
	for _, g := range all {
		if g.IsEmpty() {
			continue
		}
		haystack := strings.ToLower(g.Label + "\n" + g.Title + "\n" + g.Description)
		if !strings.Contains(haystack, needle) {
			continue
		}
		groups = append(groups, g)
		if len(groups) == q.limit() {
			break
		}
	}
	model.SortGroups(groups)
	return groups, nil
}

// IndexGroup pushes the group to the index in the background.
func (s *Service) IndexGroup(g model.Group) {
	if s.index == nil || !s.index.Healthy() {
		return
	}
	rec := RecordFromGroup(g)
	go func() {
		if err := s.index.IndexGroup(rec); err != nil {
			slog.Warn("index group failed", "group_id", rec.ID, "error", err)
		}
	}()
}

// DeleteGroup removes the group from the index in the background.
func (s *Service) DeleteGroup(id int64) {
	if s.index == nil || !s.index.Healthy() {
		return
	}
	go func() {
		if err := s.index.DeleteGroup(id); err != nil {
			slog.Warn("delete indexed group failed", "group_id", id, "error", err)
		}
	}()
}
