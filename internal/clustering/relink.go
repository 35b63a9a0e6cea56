package clustering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

type RelinkResult struct {
	// UpdatedCount is the number of distinct groups whose counterGroupId
	// changed during the batch.
	UpdatedCount int `json:"updated_count"`
	// SkippedCount is the number of groups whose oracle call failed.
	SkippedCount int `json:"skipped_count"`
}

// RelinkRoom runs MaintainLink for every "for" group against the "against"
// groups, then the reverse, in creation order. Group content comes from one
// snapshot taken at the start; link state is read live as the batch mutates
// it.
func (e *Engine) RelinkRoom(ctx context.Context, roomID int64) (RelinkResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RoomID:    logger.Ptr(roomID),
		Component: "opinion.clustering.relink",
	})
	sc := logger.StartSpan(ctx, "clustering.relink")
	defer sc.End()
	ctx = sc.Context()

	groups, err := e.stores.Groups().ListByRoom(ctx, roomID)
	if err != nil {
		return RelinkResult{}, fmt.Errorf("listing groups: %w", err)
	}

	var forGroups, againstGroups []model.Group
	for _, g := range groups {
		if g.Stance == model.StanceFor {
			forGroups = append(forGroups, g)
		} else {
			againstGroups = append(againstGroups, g)
		}
	}

	var result RelinkResult
	changed := map[int64]struct{}{}

	pass := func(subjects, candidates []model.Group) error {
		for _, g := range subjects {
			outcome, err := e.MaintainLink(ctx, g, candidates)
			if err != nil {
				if errors.Is(err, model.ErrOracleUnavailable) {
					result.SkippedCount++
					continue
				}
				return err
			}
			for _, id := range outcome.Touched {
				changed[id] = struct{}{}
			}
		}
		return nil
	}

	if err := pass(forGroups, againstGroups); err != nil {
		sc.RecordError(err)
		return RelinkResult{}, err
	}
	if err := pass(againstGroups, forGroups); err != nil {
		sc.RecordError(err)
		return RelinkResult{}, err
	}

	result.UpdatedCount = len(changed)

	slog.InfoContext(ctx, "room relinked",
		"group_count", len(groups),
		"updated_count", result.UpdatedCount,
		"skipped_count", result.SkippedCount)

	return result, nil
}
