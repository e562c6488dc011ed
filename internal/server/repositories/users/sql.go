// Package users persists the user directory.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create inserts row. An existing username is left untouched and
// reported as common.ErrorAlreadyExists.
func (r *SQLRepository) Create(ctx context.Context, row *Row) error {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO users (username, secret, is_privileged, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, query, row.Username, row.SealedSecret, row.IsPrivileged, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*Row, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT username, secret, is_privileged, created_at FROM users
		 WHERE username = ?`)

	row := &Row{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&row.Username, &row.SealedSecret, &row.IsPrivileged, &row.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return row, nil
}

func (r *SQLRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := dbx.Rebind(r.dialect, `SELECT 1 FROM users WHERE username = ?`)

	var one int
	err := r.db.QueryRowContext(ctx, query, username).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}
