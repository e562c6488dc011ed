// Package dbx holds the database plumbing shared by the server store and
// the client inbox cache: driver/dialect selection, placeholder rebinding,
// the DBTX handle repositories are written against, and WithTx.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX lets a repository run on either the pool or an open transaction, so
// the message insert can check the receiver and write in one unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. fn's error is returned unchanged so
// callers can match sentinels with errors.Is; begin and commit failures are
// wrapped. A panic in fn rolls back and is re-raised.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    ok, err := users(tx).Exists(ctx, receiver)
//	    ...
//	    _, err = messages(tx).Create(ctx, m)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
