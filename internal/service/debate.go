package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// ErrAsyncRelinkDisabled is returned by EnqueueRelink when no relink stream
// is configured.
var ErrAsyncRelinkDisabled = fmt.Errorf("async relink is not configured: %w", model.ErrInvalidState)

type AddCommentInput struct {
	RoomID int64
	Stance model.Stance
	Text   string
	Author model.Author
}

// IngestResult is the outcome of one comment's trip through the pipeline.
// CounterLinkSkipped is set when the counter-match oracle was unavailable and
// the group's link was left as it was.
type IngestResult struct {
	Comment            model.Comment `json:"comment"`
	Group              model.Group   `json:"group"`
	IsNewGroup         bool          `json:"is_new_group"`
	CounterLinkSkipped bool          `json:"counter_link_skipped"`
}

type DebateService interface {
	AddComment(ctx context.Context, in AddCommentInput) (IngestResult, error)
	ListGroups(ctx context.Context, roomID int64, stance *model.Stance) ([]model.Group, error)
	RegenerateGroup(ctx context.Context, groupID int64) (model.Group, error)
	RelinkRoom(ctx context.Context, roomID int64) (clustering.RelinkResult, error)
	EnqueueRelink(ctx context.Context, roomID int64) (string, error)
	GetCounterAnalysis(ctx context.Context, groupID int64) (CounterAnalysis, error)
	DebugCounterStatus(ctx context.Context, roomID int64) ([]CounterStatus, error)
	SearchGroups(ctx context.Context, roomID int64, query string) ([]model.Group, error)
	ListOracleCalls(ctx context.Context, groupID int64) ([]model.OracleCall, error)
}

type debateService struct {
	stores   store.Provider
	engine   *clustering.Engine
	locker   lock.Locker
	search   *search.Service
	producer queue.Producer
}

// NewDebateService wires the ingestion pipeline. producer may be nil, in
// which case EnqueueRelink fails with ErrAsyncRelinkDisabled.
func NewDebateService(stores store.Provider, engine *clustering.Engine, locker lock.Locker, searcher *search.Service, producer queue.Producer) DebateService {
	return &debateService{
		stores:   stores,
		engine:   engine,
		locker:   locker,
		search:   searcher,
		producer: producer,
	}
}

// AddComment persists the comment, classifies it, regenerates its group and
// re-evaluates that group's counter link, all under the room lock. Once the
// lock is held the pipeline runs to completion even if ctx is cancelled.
func (s *debateService) AddComment(ctx context.Context, in AddCommentInput) (IngestResult, error) {
	if !in.Stance.Valid() {
		return IngestResult{}, fmt.Errorf("%w: stance must be %q or %q", model.ErrInvalidInput, model.StanceFor, model.StanceAgainst)
	}
	if err := in.Author.Validate(); err != nil {
		return IngestResult{}, err
	}
	text := common.PlainText(in.Text)
	if text == "" {
		return IngestResult{}, fmt.Errorf("%w: comment text is required", model.ErrInvalidInput)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RoomID:    logger.Ptr(in.RoomID),
		Stance:    logger.Ptr(string(in.Stance)),
		Component: "opinion.service.ingest",
	})
	sc := logger.StartSpan(ctx, "service.add_comment")
	defer sc.End()
	ctx = sc.Context()

	if _, err := s.stores.Rooms().GetByID(ctx, in.RoomID); err != nil {
		return IngestResult{}, fmt.Errorf("loading room %d: %w", in.RoomID, err)
	}

	var result IngestResult
	err := s.withRoomLock(ctx, in.RoomID, func(ctx context.Context) error {
		comment, err := s.stores.Comments().Create(ctx, model.Comment{
			RoomID: in.RoomID,
			Stance: in.Stance,
			Text:   text,
			Author: in.Author,
		})
		if err != nil {
			return fmt.Errorf("saving comment: %w", err)
		}
		ctx = logger.WithLogFields(ctx, logger.LogFields{CommentID: logger.Ptr(comment.ID)})

		assignment, err := s.engine.Classify(ctx, comment)
		if err != nil {
			// An ungrouped comment would never be shown, so drop it.
			if delErr := s.stores.Comments().Delete(context.WithoutCancel(ctx), comment.ID); delErr != nil {
				slog.ErrorContext(ctx, "failed to remove unclassified comment", "error", delErr)
			}
			return fmt.Errorf("classifying comment: %w", err)
		}
		result.IsNewGroup = assignment.IsNew

		group, err := s.engine.Regenerate(ctx, assignment.Group.ID, assignment.IsNew)
		if err != nil {
			return fmt.Errorf("regenerating group: %w", err)
		}

		group, result.CounterLinkSkipped, err = s.maintainLink(ctx, group)
		if err != nil {
			return err
		}
		result.Group = group

		result.Comment, err = s.stores.Comments().GetByID(ctx, comment.ID)
		if err != nil {
			return fmt.Errorf("reloading comment: %w", err)
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return IngestResult{}, err
	}

	s.search.IndexGroup(result.Group)

	slog.InfoContext(ctx, "comment ingested",
		"comment_id", result.Comment.ID,
		"group_id", result.Group.ID,
		"is_new_group", result.IsNewGroup,
		"counter_link_skipped", result.CounterLinkSkipped,
		"text", logger.Truncate(text, 120))

	return result, nil
}

// ListGroups returns the room's non-empty groups sorted for display.
func (s *debateService) ListGroups(ctx context.Context, roomID int64, stance *model.Stance) ([]model.Group, error) {
	if _, err := s.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return nil, fmt.Errorf("loading room %d: %w", roomID, err)
	}

	var (
		groups []model.Group
		err    error
	)
	if stance != nil {
		if !stance.Valid() {
			return nil, fmt.Errorf("%w: unknown stance %q", model.ErrInvalidInput, *stance)
		}
		groups, err = s.stores.Groups().ListByRoomAndStance(ctx, roomID, *stance)
	} else {
		groups, err = s.stores.Groups().ListByRoom(ctx, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	visible := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		if !g.IsEmpty() {
			visible = append(visible, g)
		}
	}
	model.SortGroups(visible)
	return visible, nil
}

// RegenerateGroup rewrites one group's content and re-evaluates its counter
// link. An oracle outage during the link step is logged and the regenerated
// group is still returned.
func (s *debateService) RegenerateGroup(ctx context.Context, groupID int64) (model.Group, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GroupID:   logger.Ptr(groupID),
		Component: "opinion.service.regenerate",
	})

	group, err := s.stores.Groups().GetByID(ctx, groupID)
	if err != nil {
		return model.Group{}, fmt.Errorf("loading group %d: %w", groupID, err)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{RoomID: logger.Ptr(group.RoomID)})

	err = s.withRoomLock(ctx, group.RoomID, func(ctx context.Context) error {
		regenerated, err := s.engine.Regenerate(ctx, groupID, false)
		if err != nil {
			return err
		}
		group, _, err = s.maintainLink(ctx, regenerated)
		return err
	})
	if err != nil {
		return model.Group{}, err
	}

	s.search.IndexGroup(group)
	return group, nil
}

func (s *debateService) RelinkRoom(ctx context.Context, roomID int64) (clustering.RelinkResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RoomID:    logger.Ptr(roomID),
		Component: "opinion.service.relink",
	})

	if _, err := s.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return clustering.RelinkResult{}, fmt.Errorf("loading room %d: %w", roomID, err)
	}

	var result clustering.RelinkResult
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		var err error
		result, err = s.engine.RelinkRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return clustering.RelinkResult{}, err
	}
	return result, nil
}

// EnqueueRelink schedules RelinkRoom on the worker and returns the job id.
func (s *debateService) EnqueueRelink(ctx context.Context, roomID int64) (string, error) {
	if s.producer == nil {
		return "", ErrAsyncRelinkDisabled
	}
	if _, err := s.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return "", fmt.Errorf("loading room %d: %w", roomID, err)
	}

	msg := queue.RelinkMessage{RoomID: roomID, Reason: "api"}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		msg.TraceID = logger.Ptr(spanCtx.TraceID().String())
	}

	jobID, err := s.producer.Enqueue(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("enqueueing relink for room %d: %w", roomID, err)
	}
	return jobID, nil
}

// maintainLink runs the counter-link step for one group. The returned bool
// reports an oracle outage, which is not an error for the caller.
func (s *debateService) maintainLink(ctx context.Context, group model.Group) (model.Group, bool, error) {
	candidates, err := s.engine.Candidates(ctx, group)
	if err != nil {
		return model.Group{}, false, err
	}

	outcome, err := s.engine.MaintainLink(ctx, group, candidates)
	if err != nil {
		if errors.Is(err, model.ErrOracleUnavailable) {
			return group, true, nil
		}
		return model.Group{}, false, fmt.Errorf("maintaining counter link: %w", err)
	}
	return outcome.Group, false, nil
}

// withRoomLock runs fn while holding the room's lock. fn receives a context
// detached from the caller's cancellation so a started mutation always
// finishes.
func (s *debateService) withRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context) error) error {
	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		return fmt.Errorf("locking room %d: %w", roomID, err)
	}
	defer unlock()

	return fn(context.WithoutCancel(ctx))
}
