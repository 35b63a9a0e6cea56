package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/llm"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

const maxTitleRunes = 80

type SummaryResponse struct {
	Title       string `json:"title" jsonschema_description:"Short human-facing title, at most 80 characters"`
	Description string `json:"description" jsonschema_description:"One paragraph covering every distinct point without repetition"`
}

var summarySchema = llm.GenerateSchema[SummaryResponse]()

// LLMSummarizer writes a group's title and description from its comments.
type LLMSummarizer struct {
	llm   llm.Client
	guard *Guard
	calls store.OracleCallStore
}

func NewLLMSummarizer(client llm.Client, guard *Guard, calls store.OracleCallStore) *LLMSummarizer {
	return &LLMSummarizer{llm: client, guard: guard, calls: calls}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, req SummarizeRequest) (Summary, error) {
	sc := logger.StartSpan(ctx, "brain.summarize")
	defer sc.End()
	ctx = sc.Context()
	sc.SetInt64("group_id", req.GroupID)

	prompt := buildSummarizePrompt(req)

	var (
		response SummaryResponse
		llmResp  *llm.Response
	)
	start := time.Now()
	err := s.guard.Do(ctx, model.OracleStageSummarize, func(ctx context.Context) error {
		var chatErr error
		llmResp, chatErr = s.llm.Chat(ctx, llm.Request{
			SystemPrompt: summarizeSystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "summary_response",
			Schema:       summarySchema,
			Temperature:  llm.Temp(0.2),
		}, &response)
		if chatErr != nil {
			return chatErr
		}
		if strings.TrimSpace(response.Title) == "" {
			return llm.ErrNoStructuredOutput
		}
		return nil
	})
	latency := time.Since(start)

	recordCall(ctx, s.calls, model.OracleCall{
		RoomID:    req.RoomID,
		GroupID:   int64Ptr(req.GroupID),
		Stage:     model.OracleStageSummarize,
		Model:     s.llm.Model(),
		InputText: prompt,
	}, response, llmResp, latency, err)

	if err != nil {
		sc.RecordError(err)
		return Summary{}, fmt.Errorf("summarize group: %w", err)
	}

	summary := Summary{
		Title:       truncateRunes(strings.TrimSpace(response.Title), maxTitleRunes),
		Description: strings.TrimSpace(response.Description),
	}

	slog.DebugContext(ctx, "group summarized",
		"title", summary.Title,
		"comment_count", len(req.Texts),
		"latency_ms", latency.Milliseconds())

	return summary, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func buildSummarizePrompt(req SummarizeRequest) string {
	var sb strings.Builder

	sb.WriteString("## Stance\n")
	sb.WriteString(string(req.Stance))
	sb.WriteString("\n\n## Comments\n")
	for i, text := range req.Texts {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, text))
	}

	return sb.String()
}

const summarizeSystemPrompt = `You summarize a cluster of debate comments that argue the same side.

## Output

- title: a short headline (at most 80 characters) naming the shared argument.
- description: one paragraph that covers every distinct point raised across the comments.

## Rules

- Mention each distinct point once, even when several comments repeat it.
- Stay neutral in tone; do not add arguments nobody made.
- Do not quote usernames or address the commenters.`
