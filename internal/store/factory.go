package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// Stores binds the Postgres stores to a pool or a transaction.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Rooms() RoomStore {
	return newRoomStore(s.q)
}

func (s *Stores) Groups() GroupStore {
	return newGroupStore(s.q)
}

func (s *Stores) Comments() CommentStore {
	return newCommentStore(s.q)
}

func (s *Stores) OracleCalls() OracleCallStore {
	return newOracleCallStore(s.q)
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner creates a TxRunner backed by the given database.
func NewTxRunner(database *db.DB) TxRunner {
	return &dbTxRunner{db: database}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores Provider) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		return fn(NewStores(q))
	})
}

// wrapErr maps pgx.ErrNoRows to ErrNotFound and tags every other driver
// error as a persistence failure.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrPersistence, err)
}
