package service

import (
	"context"
	"fmt"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
)

// CounterAnalysis compares a group's stored counter link with the oracle's
// current answer. CounterGroup is the stored partner, SuggestedGroup the
// oracle's pick. IsStillValid holds when both name the same group, or both
// name none.
type CounterAnalysis struct {
	CounterGroup   *model.Group `json:"counter_group"`
	SuggestedGroup *model.Group `json:"suggested_group"`
	Confidence     float64      `json:"confidence"`
	Reasoning      string       `json:"reasoning"`
	IsStillValid   bool         `json:"is_still_valid"`
}

// CounterStatus is one row of the counter-link debug listing.
type CounterStatus struct {
	GroupID           int64        `json:"group_id"`
	Title             string       `json:"title"`
	Stance            model.Stance `json:"stance"`
	CommentCount      int          `json:"comment_count"`
	CounterGroupID    *int64       `json:"counter_group_id"`
	CounterGroupTitle *string      `json:"counter_group_title"`
	DisplayOrder      float64      `json:"display_order"`
}

// GetCounterAnalysis asks the counter-match oracle again without writing
// anything. Oracle failures are returned as model.ErrOracleUnavailable.
func (s *debateService) GetCounterAnalysis(ctx context.Context, groupID int64) (CounterAnalysis, error) {
	group, err := s.stores.Groups().GetByID(ctx, groupID)
	if err != nil {
		return CounterAnalysis{}, fmt.Errorf("loading group %d: %w", groupID, err)
	}

	candidates, err := s.engine.Candidates(ctx, group)
	if err != nil {
		return CounterAnalysis{}, err
	}
	byID := make(map[int64]model.Group, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	var analysis CounterAnalysis
	if group.CounterGroupID != nil {
		if partner, ok := byID[*group.CounterGroupID]; ok {
			analysis.CounterGroup = &partner
		}
	}

	var match brain.CounterMatch
	if len(candidates) > 0 {
		match, err = s.engine.Matcher().MatchCounter(ctx, brain.MatchRequest{Group: group, Candidates: candidates})
		if err != nil {
			return CounterAnalysis{}, fmt.Errorf("analyzing counter for group %d: %w", groupID, err)
		}
	}
	analysis.Confidence = match.Confidence
	analysis.Reasoning = match.Reasoning

	if match.BestMatchID != nil {
		if suggested, ok := byID[*match.BestMatchID]; ok {
			analysis.SuggestedGroup = &suggested
		}
	}

	switch {
	case group.CounterGroupID == nil:
		analysis.IsStillValid = match.BestMatchID == nil
	case match.BestMatchID == nil:
		analysis.IsStillValid = false
	default:
		analysis.IsStillValid = *group.CounterGroupID == *match.BestMatchID
	}

	return analysis, nil
}

// DebugCounterStatus lists every group of the room, empty ones included, in
// display order.
func (s *debateService) DebugCounterStatus(ctx context.Context, roomID int64) ([]CounterStatus, error) {
	if _, err := s.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return nil, fmt.Errorf("loading room %d: %w", roomID, err)
	}

	groups, err := s.stores.Groups().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	titles := make(map[int64]string, len(groups))
	for _, g := range groups {
		titles[g.ID] = g.Title
	}
	model.SortGroups(groups)

	rows := make([]CounterStatus, 0, len(groups))
	for _, g := range groups {
		row := CounterStatus{
			GroupID:        g.ID,
			Title:          g.Title,
			Stance:         g.Stance,
			CommentCount:   g.CommentCount(),
			CounterGroupID: g.CounterGroupID,
			DisplayOrder:   g.DisplayOrder,
		}
		if g.CounterGroupID != nil {
			if title, ok := titles[*g.CounterGroupID]; ok {
				row.CounterGroupTitle = &title
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *debateService) SearchGroups(ctx context.Context, roomID int64, query string) ([]model.Group, error) {
	if _, err := s.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return nil, fmt.Errorf("loading room %d: %w", roomID, err)
	}
	return s.search.Search(ctx, search.Query{RoomID: roomID, Text: query})
}

// ListOracleCalls returns the audit trail of oracle requests made for a group.
func (s *debateService) ListOracleCalls(ctx context.Context, groupID int64) ([]model.OracleCall, error) {
	if _, err := s.stores.Groups().GetByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("loading group %d: %w", groupID, err)
	}
	calls, err := s.stores.OracleCalls().ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing oracle calls: %w", err)
	}
	return calls, nil
}
