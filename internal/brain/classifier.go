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

const maxLabelWords = 6

type ClassificationResponse struct {
	MatchedLabel  string `json:"matched_label" jsonschema_description:"One of the existing labels copied exactly, or an empty string when none fits"`
	ProposedLabel string `json:"proposed_label" jsonschema_description:"Short label (at most six words) summarizing the group the comment belongs to"`
}

var classificationSchema = llm.GenerateSchema[ClassificationResponse]()

// LLMClassifier asks an LLM whether a comment belongs to an existing group.
type LLMClassifier struct {
	llm   llm.Client
	guard *Guard
	calls store.OracleCallStore
}

func NewLLMClassifier(client llm.Client, guard *Guard, calls store.OracleCallStore) *LLMClassifier {
	return &LLMClassifier{llm: client, guard: guard, calls: calls}
}

func (c *LLMClassifier) Classify(ctx context.Context, req ClassifyRequest) (Classification, error) {
	sc := logger.StartSpan(ctx, "brain.classify")
	defer sc.End()
	ctx = sc.Context()

	prompt := buildClassifyPrompt(req)

	var (
		response ClassificationResponse
		llmResp  *llm.Response
	)
	start := time.Now()
	err := c.guard.Do(ctx, model.OracleStageClassify, func(ctx context.Context) error {
		var chatErr error
		llmResp, chatErr = c.llm.Chat(ctx, llm.Request{
			SystemPrompt: classifySystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "classification_response",
			Schema:       classificationSchema,
			Temperature:  llm.Temp(0.1),
		}, &response)
		return chatErr
	})
	latency := time.Since(start)

	recordCall(ctx, c.calls, model.OracleCall{
		RoomID:    req.RoomID,
		Stage:     model.OracleStageClassify,
		Model:     c.llm.Model(),
		InputText: prompt,
	}, response, llmResp, latency, err)

	if err != nil {
		sc.RecordError(err)
		return Classification{}, fmt.Errorf("classify comment: %w", err)
	}

	result := Classification{ProposedLabel: normalizeLabel(response.ProposedLabel)}
	if matched := strings.TrimSpace(response.MatchedLabel); matched != "" {
		result.MatchedLabel = &matched
	}
	if result.ProposedLabel == "" {
		if result.MatchedLabel != nil {
			result.ProposedLabel = *result.MatchedLabel
		} else {
			result.ProposedLabel = LabelFromText(req.Text)
		}
	}

	slog.DebugContext(ctx, "comment classified",
		"matched", result.MatchedLabel != nil,
		"proposed_label", result.ProposedLabel,
		"latency_ms", latency.Milliseconds())

	return result, nil
}

// normalizeLabel collapses whitespace and caps the label at six words.
func normalizeLabel(label string) string {
	words := strings.Fields(label)
	if len(words) > maxLabelWords {
		words = words[:maxLabelWords]
	}
	return strings.Join(words, " ")
}

func buildClassifyPrompt(req ClassifyRequest) string {
	var sb strings.Builder

	sb.WriteString("## Stance\n")
	sb.WriteString(string(req.Stance))
	sb.WriteString("\n\n## Existing labels\n")
	if len(req.ExistingLabels) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, label := range req.ExistingLabels {
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteString("\n")
	}
	sb.WriteString("\n## Comment\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n")

	return sb.String()
}

const classifySystemPrompt = `You group debate comments by the argument they make.

All comments and labels you see share the same stance on the debate topic.

## Task

Decide whether the comment makes the same core argument as one of the existing labels.

- If it does, copy that label into matched_label exactly as written.
- If none fits, set matched_label to an empty string.

Then write proposed_label: a short label (at most six words) for the group the comment ends up in.
When you matched an existing label, refine it so it covers the existing theme plus this comment.
When you did not, describe the new theme.

## Rules

- Match on the argument, not on shared vocabulary.
- Never invent a matched_label that is not in the list.
- Labels are noun phrases in title case, for example "Renewable Cost Benefits".`
