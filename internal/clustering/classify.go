package clustering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// Assignment is the group a comment landed in.
type Assignment struct {
	Group model.Group
	IsNew bool
}

// Classify assigns an ungrouped comment to an existing same-stance group or a
// new one. Membership, the label and comment.groupId are written in one
// transaction. Oracle failures fall back to the heuristic classifier, so the
// only errors returned are store errors.
func (e *Engine) Classify(ctx context.Context, comment model.Comment) (Assignment, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "opinion.clustering.classify"})
	sc := logger.StartSpan(ctx, "clustering.classify")
	defer sc.End()
	ctx = sc.Context()

	if comment.GroupID != nil {
		return Assignment{}, fmt.Errorf("comment %d already belongs to group %d: %w", comment.ID, *comment.GroupID, model.ErrInvalidState)
	}

	groups, err := e.stores.Groups().ListByRoomAndStance(ctx, comment.RoomID, comment.Stance)
	if err != nil {
		return Assignment{}, fmt.Errorf("listing groups: %w", err)
	}

	labels := make([]string, 0, len(groups))
	byLabel := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		if _, dup := byLabel[g.Label]; dup {
			continue
		}
		labels = append(labels, g.Label)
		byLabel[g.Label] = g
	}

	req := brain.ClassifyRequest{
		RoomID:         comment.RoomID,
		Stance:         comment.Stance,
		Text:           comment.Text,
		ExistingLabels: labels,
	}
	result, err := e.classifier.Classify(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "classification oracle failed, using heuristic", "error", err)
		result, _ = e.fallback.Classify(ctx, req)
	}
	if result.ProposedLabel == "" {
		result.ProposedLabel = brain.LabelFromText(comment.Text)
	}

	var target *model.Group
	if result.MatchedLabel != nil {
		if g, ok := byLabel[*result.MatchedLabel]; ok {
			target = &g
		} else {
			slog.WarnContext(ctx, "classifier matched unknown label, creating new group",
				"matched_label", *result.MatchedLabel)
		}
	}

	var assignment Assignment
	err = e.tx.WithTx(ctx, func(stores store.Provider) error {
		if target != nil {
			if _, err := stores.Groups().AppendComment(ctx, target.ID, comment.ID); err != nil {
				return fmt.Errorf("appending comment: %w", err)
			}
			updated, err := stores.Groups().UpdateContent(ctx, target.ID, result.ProposedLabel, target.Title, target.Description)
			if err != nil {
				return fmt.Errorf("updating label: %w", err)
			}
			assignment = Assignment{Group: updated}
		} else {
			created, err := createGroup(ctx, stores, comment, result.ProposedLabel)
			if err != nil {
				return err
			}
			assignment = Assignment{Group: created, IsNew: true}
		}
		if err := stores.Comments().AssignToGroup(ctx, comment.ID, assignment.Group.ID); err != nil {
			return fmt.Errorf("assigning comment: %w", err)
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return Assignment{}, err
	}

	slog.InfoContext(ctx, "comment classified",
		"group_id", assignment.Group.ID,
		"is_new_group", assignment.IsNew,
		"label", assignment.Group.Label)

	return assignment, nil
}

// createGroup places a new group after every existing group of its stance, or
// at zero when it is the first.
func createGroup(ctx context.Context, stores store.Provider, comment model.Comment, label string) (model.Group, error) {
	maxOrder, found, err := stores.Groups().MaxDisplayOrder(ctx, comment.RoomID, comment.Stance)
	if err != nil {
		return model.Group{}, fmt.Errorf("reading display order: %w", err)
	}
	order := 0.0
	if found {
		order = maxOrder + 1
	}

	created, err := stores.Groups().Create(ctx, model.Group{
		RoomID:       comment.RoomID,
		Stance:       comment.Stance,
		Label:        label,
		CommentIDs:   []int64{comment.ID},
		DisplayOrder: order,
	})
	if err != nil {
		return model.Group{}, fmt.Errorf("creating group: %w", err)
	}
	return created, nil
}
