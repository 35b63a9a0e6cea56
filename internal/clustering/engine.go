// Package clustering turns comments into opinion groups and keeps counter
// links between opposite-stance groups symmetric.
//
// Callers serialize mutating operations per room; the engine itself does not
// lock.
package clustering

import (
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

const (
	PlaceholderTitle       = "Discussion Group"
	PlaceholderDescription = "A group of related comments from this discussion."

	// counterOffset places a group directly after its partner when sorted by
	// display order.
	counterOffset = 0.5
)

type Engine struct {
	stores     store.Provider
	tx         store.TxRunner
	classifier brain.Classifier
	fallback   *brain.HeuristicClassifier
	summarizer brain.Summarizer
	matcher    brain.CounterMatcher
}

func New(stores store.Provider, tx store.TxRunner, oracles brain.Oracles) *Engine {
	return &Engine{
		stores:     stores,
		tx:         tx,
		classifier: oracles.Classifier,
		fallback:   brain.NewHeuristicClassifier(),
		summarizer: oracles.Summarizer,
		matcher:    oracles.Matcher,
	}
}

// Matcher exposes the counter-match oracle for read-only analysis.
func (e *Engine) Matcher() brain.CounterMatcher {
	return e.matcher
}
