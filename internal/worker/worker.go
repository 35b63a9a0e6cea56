package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
)

type Config struct {
	MaxAttempts int
	// SweepInterval is how often Run claims stale jobs; zero disables it.
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

type Worker struct {
	consumer Consumer
	relinker Relinker
	cfg      Config

	nextSweep time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, relinker Relinker, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Worker{
		consumer:  consumer,
		relinker:  relinker,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "opinion.worker"})
	slog.InfoContext(ctx, "worker started",
		"max_attempts", w.cfg.MaxAttempts,
		"sweep_interval", w.cfg.SweepInterval,
		"stale_after", w.cfg.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if w.sweepDue(time.Now()) {
				if _, err := w.Sweep(ctx); err != nil {
					slog.ErrorContext(ctx, "stale job sweep failed", "error", err)
				}
			}
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		_ = w.Handle(ctx, msg)
	}
	return nil
}

// Handle processes msg and routes a failure to a retry or the DLQ. The
// returned error is the processing error, already dealt with.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) error {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RoomID:    logger.Ptr(msg.RoomID),
		MessageID: &msgID,
	})

	err := w.processMessageSafe(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "message processing failed", "error", err, "attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
	}
	return err
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage runs one relink job and acks it on success.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.relink_room")
	defer sc.End()
	ctx = sc.Context()

	slog.InfoContext(ctx, "processing relink job",
		"reason", msg.Reason,
		"attempt", msg.Attempt)

	start := time.Now()
	result, err := w.relinker.RelinkRoom(ctx, msg.RoomID)
	if err != nil {
		sc.RecordError(err)
		return fmt.Errorf("relinking room %d: %w", msg.RoomID, err)
	}
	sc.SetInt64("relink.updated_count", int64(result.UpdatedCount))

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Relink is idempotent, so a redelivery after a lost ack is harmless.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}

	slog.InfoContext(ctx, "relink job completed",
		"updated_count", result.UpdatedCount,
		"skipped_count", result.SkippedCount,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	permanent := errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidState)
	if permanent || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "giving up on message, sending to DLQ",
			"attempts", msg.Attempt,
			"permanent", permanent)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
