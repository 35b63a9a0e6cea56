package brain

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/llm"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// recordCall writes one audit row. Failures are logged and swallowed since the
// audit trail is observability, not the critical path.
func recordCall(ctx context.Context, calls store.OracleCallStore, call model.OracleCall, output any, llmResp *llm.Response, latency time.Duration, callErr error) {
	if calls == nil {
		return
	}

	call.LatencyMs = latency.Milliseconds()
	if output != nil && callErr == nil {
		raw, err := json.Marshal(output)
		if err != nil {
			slog.ErrorContext(ctx, "failed to marshal oracle output for audit", "stage", call.Stage, "error", err)
		} else {
			call.OutputJSON = string(raw)
		}
	}
	if llmResp != nil {
		call.PromptTokens = intPtr(llmResp.PromptTokens)
		call.CompletionTokens = intPtr(llmResp.CompletionTokens)
	}
	if callErr != nil {
		call.Error = stringPtr(callErr.Error())
	}

	if _, err := calls.Create(ctx, call); err != nil {
		slog.ErrorContext(ctx, "failed to record oracle call", "stage", call.Stage, "error", err)
	}
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
func int64Ptr(i int64) *int64    { return &i }
