package brain

import (
	"context"
	"fmt"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// DisabledSummarizer stands in when no summarizer LLM is configured. Every
// call fails, which sends groups down the placeholder-content path.
type DisabledSummarizer struct{}

func (DisabledSummarizer) Summarize(context.Context, SummarizeRequest) (Summary, error) {
	return Summary{}, fmt.Errorf("summarizer not configured: %w", model.ErrOracleUnavailable)
}

// DisabledMatcher stands in when no matcher LLM is configured. Counter links
// are never created or changed while it is in use.
type DisabledMatcher struct{}

func (DisabledMatcher) MatchCounter(context.Context, MatchRequest) (CounterMatch, error) {
	return CounterMatch{}, fmt.Errorf("counter matcher not configured: %w", model.ErrOracleUnavailable)
}
