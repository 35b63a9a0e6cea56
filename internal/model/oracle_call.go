package model

import "time"

type OracleStage string

const (
	OracleStageClassify  OracleStage = "classify"
	OracleStageSummarize OracleStage = "summarize"
	OracleStageMatch     OracleStage = "match"
)

// OracleCall is the audit record of one classification, summarization or
// counter-match request.
type OracleCall struct {
	ID               int64       `json:"id"`
	RoomID           int64       `json:"room_id"`
	GroupID          *int64      `json:"group_id,omitempty"`
	Stage            OracleStage `json:"stage"`
	Model            string      `json:"model"`
	InputText        string      `json:"input_text"`
	OutputJSON       string      `json:"output_json,omitempty"`
	LatencyMs        int64       `json:"latency_ms"`
	PromptTokens     *int        `json:"prompt_tokens,omitempty"`
	CompletionTokens *int        `json:"completion_tokens,omitempty"`
	Error            *string     `json:"error,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
