package brain

import (
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/llm"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// Oracles bundles the three oracle capabilities injected into the clustering
// engine.
type Oracles struct {
	Classifier Classifier
	Summarizer Summarizer
	Matcher    CounterMatcher
}

// NewOracles builds LLM-backed oracles for every configured LLM and the
// deterministic or disabled stand-ins for the rest. All LLM oracles share one
// Guard, so the rate limit applies across them.
func NewOracles(cfg config.Config, calls store.OracleCallStore) (Oracles, error) {
	guard := NewGuard(cfg.Oracle)
	oracles := Oracles{
		Classifier: NewHeuristicClassifier(),
		Summarizer: DisabledSummarizer{},
		Matcher:    DisabledMatcher{},
	}

	if cfg.ClassifierLLM.Enabled() {
		client, err := newClient(cfg.ClassifierLLM)
		if err != nil {
			return Oracles{}, fmt.Errorf("classifier llm: %w", err)
		}
		oracles.Classifier = NewLLMClassifier(client, guard, calls)
	} else {
		slog.Warn("classifier llm not configured, using heuristic classification")
	}

	if cfg.SummarizerLLM.Enabled() {
		client, err := newClient(cfg.SummarizerLLM)
		if err != nil {
			return Oracles{}, fmt.Errorf("summarizer llm: %w", err)
		}
		oracles.Summarizer = NewLLMSummarizer(client, guard, calls)
	} else {
		slog.Warn("summarizer llm not configured, groups will carry placeholder content")
	}

	if cfg.MatcherLLM.Enabled() {
		client, err := newClient(cfg.MatcherLLM)
		if err != nil {
			return Oracles{}, fmt.Errorf("matcher llm: %w", err)
		}
		oracles.Matcher = NewLLMCounterMatcher(client, guard, calls)
	} else {
		slog.Warn("matcher llm not configured, counter links disabled")
	}

	return oracles, nil
}

func newClient(cfg config.LLMConfig) (llm.Client, error) {
	return llm.New(llm.Config{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
}
