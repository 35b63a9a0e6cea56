package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
)

// Sweep claims relink jobs a crashed worker left unacked and runs them. A
// relink covers the whole room, so stale jobs for a room already being
// relinked in this sweep are acked without running again.
func (w *Worker) Sweep(ctx context.Context) (int, error) {
	stale, err := w.consumer.ClaimStale(ctx, w.cfg.StaleAfter)
	if err != nil {
		return 0, fmt.Errorf("claiming stale jobs: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "claimed stale relink jobs", "count", len(stale))

	handled := 0
	rooms := make(map[int64]struct{}, len(stale))
	for _, msg := range stale {
		if _, seen := rooms[msg.RoomID]; seen {
			w.ackDuplicate(ctx, msg)
			continue
		}
		rooms[msg.RoomID] = struct{}{}
		_ = w.Handle(ctx, msg)
		handled++
	}
	return handled, nil
}

func (w *Worker) ackDuplicate(ctx context.Context, msg queue.Message) {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RoomID:    logger.Ptr(msg.RoomID),
		MessageID: &msgID,
	})
	if err := w.consumer.Ack(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to ACK duplicate stale job", "error", err)
		return
	}
	slog.DebugContext(ctx, "stale job folded into this sweep's relink")
}

// sweepDue reports whether a sweep should run now and schedules the next one.
func (w *Worker) sweepDue(now time.Time) bool {
	if w.cfg.SweepInterval <= 0 || now.Before(w.nextSweep) {
		return false
	}
	w.nextSweep = now.Add(w.cfg.SweepInterval)
	return true
}
