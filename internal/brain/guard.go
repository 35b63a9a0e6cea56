package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/llm"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// Guard bounds every oracle call: a shared rate limit, a per-attempt timeout
// and a retry budget for transient provider errors. Whatever still fails is
// reported as model.ErrOracleUnavailable.
type Guard struct {
	limiter     *rate.Limiter
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
}

func NewGuard(cfg config.OracleConfig) *Guard {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Guard{
		limiter:     rate.NewLimiter(limit, burst),
		timeout:     cfg.Timeout,
		maxAttempts: attempts,
		backoff:     cfg.RetryBackoff,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error or the attempt
// budget is spent.
func (g *Guard) Do(ctx context.Context, stage model.OracleStage, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if waitErr := g.limiter.Wait(ctx); waitErr != nil {
			return fmt.Errorf("%s oracle rate limit wait: %w: %w", stage, model.ErrOracleUnavailable, waitErr)
		}

		err = g.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !llm.IsRetryable(ctx, err) {
			break
		}
		if attempt == g.maxAttempts-1 {
			break
		}

		delay := g.backoff * time.Duration(1<<attempt)
		slog.WarnContext(ctx, "oracle call retry",
			"stage", stage,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s oracle: %w: %w", stage, model.ErrOracleUnavailable, ctx.Err())
		case <-time.After(delay):
		}
	}

	if errors.Is(err, model.ErrOracleUnavailable) {
		return err
	}
	return fmt.Errorf("%s oracle: %w: %w", stage, model.ErrOracleUnavailable, err)
}

func (g *Guard) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return fn(callCtx)
}
