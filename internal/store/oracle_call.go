package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

const oracleCallColumns = `id, room_id, group_id, stage, model, input_text, COALESCE(output_json::text, ''),
	error, latency_ms, prompt_tokens, completion_tokens, created_at`

type oracleCallStore struct {
	q db.Querier
}

func newOracleCallStore(q db.Querier) OracleCallStore {
	return &oracleCallStore{q: q}
}

func (s *oracleCallStore) Create(ctx context.Context, call model.OracleCall) (model.OracleCall, error) {
	if call.ID == 0 {
		call.ID = id.New()
	}
	var output *string
	if call.OutputJSON != "" {
		output = &call.OutputJSON
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO oracle_calls
			(id, room_id, group_id, stage, model, input_text, output_json, error, latency_ms, prompt_tokens, completion_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)
		RETURNING `+oracleCallColumns,
		call.ID, call.RoomID, call.GroupID, string(call.Stage), call.Model, call.InputText, output,
		call.Error, call.LatencyMs, call.PromptTokens, call.CompletionTokens,
	)
	created, err := scanOracleCall(row)
	if err != nil {
		return model.OracleCall{}, wrapErr("create oracle call", err)
	}
	return created, nil
}

func (s *oracleCallStore) ListByGroup(ctx context.Context, groupID int64) ([]model.OracleCall, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+oracleCallColumns+` FROM oracle_calls
		WHERE group_id = $1
		ORDER BY created_at, id`, groupID)
	if err != nil {
		return nil, wrapErr("list oracle calls", err)
	}
	defer rows.Close()

	var calls []model.OracleCall
	for rows.Next() {
		call, err := scanOracleCall(rows)
		if err != nil {
			return nil, wrapErr("scan oracle call", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate oracle calls", err)
	}
	return calls, nil
}

func scanOracleCall(row pgx.Row) (model.OracleCall, error) {
	var (
		call  model.OracleCall
		stage string
	)
	err := row.Scan(
		&call.ID, &call.RoomID, &call.GroupID, &stage, &call.Model, &call.InputText, &call.OutputJSON,
		&call.Error, &call.LatencyMs, &call.PromptTokens, &call.CompletionTokens, &call.CreatedAt,
	)
	if err != nil {
		return model.OracleCall{}, err
	}
	call.Stage = model.OracleStage(stage)
	return call, nil
}
