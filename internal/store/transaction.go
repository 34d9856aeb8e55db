// Package store provides abstractions for data persistence and the
// transaction lifecycle shared by every request.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nwmlabs/nwm-api/internal/platform/logger"
)

// Scope is a single-request transaction handle. It is owned exclusively by
// the request that opened it and moves through
// Active -> {Committed, RolledBack} -> Closed. Close always releases the
// underlying connection, whichever way the request ended.
type Scope struct {
	tx     *sql.Tx
	closed bool
}

// Open begins a transaction for one request. Acquisition may block on the
// connection pool; that is the pipeline's only expected blocking point
// besides store I/O itself.
func Open(ctx context.Context, db *sql.DB) (*Scope, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}
	return &Scope{tx: tx}, nil
}

// Tx exposes the transaction for store implementations bound via WithTx.
func (s *Scope) Tx() *sql.Tx {
	return s.tx
}

// Close finishes the scope. On succeeded it attempts a commit; a commit
// failure rolls back and surfaces as ErrTransactionFailed. On failure it
// rolls back; a rollback failure is logged but returns nil so the original
// upstream error is what the caller propagates. Close is idempotent and the
// handle is released on every path.
func (s *Scope) Close(ctx context.Context, succeeded bool) error {
	if s.closed {
		return nil
	}
	s.closed = true

	log := logger.FromContext(ctx)

	if succeeded {
		if err := s.tx.Commit(); err != nil {
			log.Error("failed to commit transaction",
				slog.String("error", err.Error()))
			if rbErr := s.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to roll back after commit failure",
					slog.String("error", rbErr.Error()))
			}
			return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
		}
		log.Debug("transaction committed")
		return nil
	}

	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Error("failed to roll back transaction",
			slog.String("error", err.Error()))
	} else {
		log.Debug("transaction rolled back")
	}
	return nil
}

// TxFn is a function that executes within a database transaction. The
// transaction is committed if the function returns nil, rolled back
// otherwise.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn inside a transaction. It exists for work
// outside the request pipeline (maintenance jobs, CLI); requests get their
// scope from the pipeline instead.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	return nil
}
