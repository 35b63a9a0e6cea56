package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/llm"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

type MatchResponse struct {
	BestMatchID string  `json:"best_match_id" jsonschema_description:"ID of the single best counter-argument candidate, or an empty string when none is a real rebuttal"`
	Confidence  float64 `json:"confidence" jsonschema_description:"Confidence from 0.0 to 1.0"`
	Reasoning   string  `json:"reasoning" jsonschema_description:"One or two sentences justifying the choice"`
}

var matchSchema = llm.GenerateSchema[MatchResponse]()

// LLMCounterMatcher picks the opposite-stance group that best rebuts a group.
type LLMCounterMatcher struct {
	llm   llm.Client
	guard *Guard
	calls store.OracleCallStore
}

func NewLLMCounterMatcher(client llm.Client, guard *Guard, calls store.OracleCallStore) *LLMCounterMatcher {
	return &LLMCounterMatcher{llm: client, guard: guard, calls: calls}
}

func (m *LLMCounterMatcher) MatchCounter(ctx context.Context, req MatchRequest) (CounterMatch, error) {
	sc := logger.StartSpan(ctx, "brain.match_counter")
	defer sc.End()
	ctx = sc.Context()
	sc.SetInt64("group_id", req.Group.ID)

	if len(req.Candidates) == 0 {
		return CounterMatch{}, nil
	}

	prompt := buildMatchPrompt(req)

	var (
		response MatchResponse
		llmResp  *llm.Response
	)
	start := time.Now()
	err := m.guard.Do(ctx, model.OracleStageMatch, func(ctx context.Context) error {
		var chatErr error
		llmResp, chatErr = m.llm.Chat(ctx, llm.Request{
			SystemPrompt: matchSystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "counter_match_response",
			Schema:       matchSchema,
			Temperature:  llm.Temp(0),
		}, &response)
		return chatErr
	})
	latency := time.Since(start)

	recordCall(ctx, m.calls, model.OracleCall{
		RoomID:    req.Group.RoomID,
		GroupID:   int64Ptr(req.Group.ID),
		Stage:     model.OracleStageMatch,
		Model:     m.llm.Model(),
		InputText: prompt,
	}, response, llmResp, latency, err)

	if err != nil {
		sc.RecordError(err)
		return CounterMatch{}, fmt.Errorf("match counter: %w", err)
	}

	result := CounterMatch{
		BestMatchID: resolveCandidate(ctx, response.BestMatchID, req.Candidates),
		Confidence:  clamp01(response.Confidence),
		Reasoning:   strings.TrimSpace(response.Reasoning),
	}

	slog.DebugContext(ctx, "counter match evaluated",
		"candidate_count", len(req.Candidates),
		"matched", result.BestMatchID != nil,
		"confidence", result.Confidence,
		"latency_ms", latency.Milliseconds())

	return result, nil
}

// resolveCandidate maps the oracle's id back onto the candidate list. Ids the
// oracle invented, or could not format, count as no match.
func resolveCandidate(ctx context.Context, raw string, candidates []model.Group) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "counter match returned unparsable id", "best_match_id", raw)
		return nil
	}
	for _, c := range candidates {
		if c.ID == parsed {
			return &parsed
		}
	}
	slog.WarnContext(ctx, "counter match returned id outside candidate list", "best_match_id", parsed)
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func buildMatchPrompt(req MatchRequest) string {
	var sb strings.Builder

	sb.WriteString("## Group\n")
	writeGroup(&sb, req.Group)
	sb.WriteString("\n## Candidates (opposite stance)\n")
	for _, c := range req.Candidates {
		writeGroup(&sb, c)
	}

	return sb.String()
}

func writeGroup(sb *strings.Builder, g model.Group) {
	sb.WriteString(fmt.Sprintf("- id: %d\n  stance: %s\n  title: %s\n  description: %s\n",
		g.ID, g.Stance, g.Title, g.Description))
}

const matchSystemPrompt = `You pair opposing arguments in a debate.

You receive one group of comments arguing one side, and candidate groups arguing the other side.

## Task

Pick the single candidate that most directly rebuts the group: it should address the same
sub-topic and argue the opposite conclusion.

- Return its id in best_match_id exactly as given.
- If no candidate addresses the same sub-topic, return an empty best_match_id.
- confidence is 0.0 to 1.0; reasoning is one or two sentences.`
