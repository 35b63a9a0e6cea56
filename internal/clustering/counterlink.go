package clustering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// LinkOutcome reports one Counter-Link Maintainer pass.
type LinkOutcome struct {
	// Changed is true when a new link was written.
	Changed bool
	// Skipped is true when the oracle failed and links were left untouched.
	Skipped     bool
	BestMatchID *int64
	Confidence  float64
	Reasoning   string
	// Touched lists every group whose counterGroupId changed value.
	Touched []int64
	// Group is the group's state after the pass.
	Group model.Group
}

// Candidates returns the groups of the room whose stance is opposite to g's.
func (e *Engine) Candidates(ctx context.Context, g model.Group) ([]model.Group, error) {
	groups, err := e.stores.Groups().ListByRoomAndStance(ctx, g.RoomID, g.Stance.Opposite())
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return groups, nil
}

// MaintainLink re-evaluates g's counter-group against candidates.
//
// A nil match or the current partner leaves every link as is. A different
// match is applied in one transaction: the old partner is released if it
// still points back, the new partner's previous partner is released, the
// pair is linked both ways, and g is ordered just after its new partner.
//
// Candidates supply the content shown to the oracle; link and order state is
// always read fresh from the store. An oracle failure returns an error
// wrapping model.ErrOracleUnavailable with Skipped set.
func (e *Engine) MaintainLink(ctx context.Context, g model.Group, candidates []model.Group) (LinkOutcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GroupID:   logger.Ptr(g.ID),
		Component: "opinion.clustering.counterlink",
	})
	sc := logger.StartSpan(ctx, "clustering.counterlink")
	defer sc.End()
	ctx = sc.Context()

	outcome := LinkOutcome{Group: g}
	if len(candidates) == 0 {
		slog.DebugContext(ctx, "no counter candidates, link unchanged")
		return outcome, nil
	}

	match, err := e.matcher.MatchCounter(ctx, brain.MatchRequest{Group: g, Candidates: candidates})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "counter match unavailable, link unchanged", "error", err)
		outcome.Skipped = true
		return outcome, fmt.Errorf("counter match for group %d: %w", g.ID, err)
	}
	outcome.BestMatchID = match.BestMatchID
	outcome.Confidence = match.Confidence
	outcome.Reasoning = match.Reasoning

	if match.BestMatchID == nil {
		slog.DebugContext(ctx, "no counter match found, link unchanged")
		return outcome, nil
	}
	partnerID := *match.BestMatchID

	err = e.tx.WithTx(ctx, func(stores store.Provider) error {
		current, err := stores.Groups().GetByID(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("loading group: %w", err)
		}
		outcome.Group = current
		if current.LinkedTo(partnerID) {
			return nil
		}

		partner, err := stores.Groups().GetByID(ctx, partnerID)
		if err != nil {
			return fmt.Errorf("loading partner %d: %w", partnerID, err)
		}
		if partner.RoomID != current.RoomID || partner.Stance != current.Stance.Opposite() {
			return fmt.Errorf("group %d cannot counter group %d: %w", partnerID, current.ID, model.ErrInvalidState)
		}

		touched, err := linkPair(ctx, stores, current, partner)
		if err != nil {
			return err
		}
		outcome.Touched = touched
		outcome.Changed = true

		outcome.Group, err = stores.Groups().GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		sc.RecordError(err)
		outcome.Touched = nil
		outcome.Changed = false
		return outcome, err
	}

	if outcome.Changed {
		slog.InfoContext(ctx, "counter link updated",
			"counter_group_id", partnerID,
			"confidence", match.Confidence,
			"display_order", outcome.Group.DisplayOrder,
			"touched", outcome.Touched)
	}

	return outcome, nil
}

// linkPair writes the link between g and partner plus the releases that keep
// every link symmetric. It returns the ids whose counterGroupId changed.
func linkPair(ctx context.Context, stores store.Provider, g, partner model.Group) ([]int64, error) {
	groups := stores.Groups()
	var touched []int64

	if g.CounterGroupID != nil {
		released, err := release(ctx, groups, *g.CounterGroupID, g.ID)
		if err != nil {
			return nil, err
		}
		if released {
			touched = append(touched, *g.CounterGroupID)
		}
	}

	if partner.CounterGroupID != nil && *partner.CounterGroupID != g.ID {
		released, err := release(ctx, groups, *partner.CounterGroupID, partner.ID)
		if err != nil {
			return nil, err
		}
		if released {
			touched = append(touched, *partner.CounterGroupID)
		}
	}

	if err := groups.UpdateLink(ctx, g.ID, &partner.ID); err != nil {
		return nil, fmt.Errorf("linking group: %w", err)
	}
	touched = append(touched, g.ID)

	if !partner.LinkedTo(g.ID) {
		if err := groups.UpdateLink(ctx, partner.ID, &g.ID); err != nil {
			return nil, fmt.Errorf("linking partner: %w", err)
		}
		touched = append(touched, partner.ID)
	}

	if err := groups.UpdateOrder(ctx, g.ID, partner.DisplayOrder+counterOffset); err != nil {
		return nil, fmt.Errorf("ordering group: %w", err)
	}

	return touched, nil
}

// release clears id's link when it still points at from. A group deleted in
// the meantime counts as already released.
func release(ctx context.Context, groups store.GroupStore, id, from int64) (bool, error) {
	other, err := groups.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading group %d: %w", id, err)
	}
	if !other.LinkedTo(from) {
		return false, nil
	}
	if err := groups.UpdateLink(ctx, id, nil); err != nil {
		return false, fmt.Errorf("releasing group %d: %w", id, err)
	}
	return true, nil
}
