package clustering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// Regenerate rewrites a group's title and description from its members.
//
// Empty groups are rejected with ErrInvalidState before anything is read from
// the oracle. When the summarizer fails the previous content is kept; a group
// with no content yet, or one flagged isNew, gets placeholder content instead.
func (e *Engine) Regenerate(ctx context.Context, groupID int64, isNew bool) (model.Group, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GroupID:   logger.Ptr(groupID),
		Component: "opinion.clustering.regenerate",
	})
	sc := logger.StartSpan(ctx, "clustering.regenerate")
	defer sc.End()
	ctx = sc.Context()

	group, err := e.stores.Groups().GetByID(ctx, groupID)
	if err != nil {
		return model.Group{}, fmt.Errorf("loading group: %w", err)
	}
	if group.IsEmpty() {
		return model.Group{}, fmt.Errorf("group %d has no comments: %w", groupID, model.ErrInvalidState)
	}

	texts, err := e.memberTexts(ctx, group)
	if err != nil {
		return model.Group{}, err
	}

	summary, err := e.summarizer.Summarize(ctx, brain.SummarizeRequest{
		RoomID:  group.RoomID,
		GroupID: group.ID,
		Stance:  group.Stance,
		Texts:   texts,
	})
	if err != nil {
		if !isNew && group.Title != "" {
			slog.WarnContext(ctx, "summarization failed, keeping existing content", "error", err)
			return group, nil
		}
		slog.WarnContext(ctx, "summarization failed, using placeholder content", "error", err)
		summary = brain.Summary{Title: PlaceholderTitle, Description: PlaceholderDescription}
	}

	updated, err := e.stores.Groups().UpdateContent(ctx, group.ID, group.Label, summary.Title, summary.Description)
	if err != nil {
		sc.RecordError(err)
		return model.Group{}, fmt.Errorf("saving content: %w", err)
	}

	slog.InfoContext(ctx, "group content regenerated",
		"title", updated.Title,
		"comment_count", updated.CommentCount())

	return updated, nil
}

// memberTexts returns comment texts in membership order.
func (e *Engine) memberTexts(ctx context.Context, group model.Group) ([]string, error) {
	comments, err := e.stores.Comments().ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	byID := make(map[int64]string, len(comments))
	for _, c := range comments {
		byID[c.ID] = c.Text
	}

	texts := make([]string, 0, len(group.CommentIDs))
	for _, commentID := range group.CommentIDs {
		if text, ok := byID[commentID]; ok {
			texts = append(texts, text)
		}
	}
	return texts, nil
}
