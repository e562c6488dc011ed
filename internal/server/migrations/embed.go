// Package migrations embeds the server schema, one directory per SQL
// dialect, and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Dir returns the migration directory and goose dialect for d.
func Dir(d dbx.Dialect) (dir string, gooseDialect string) {
	if d == dbx.DialectPostgres {
		return "postgres", "pgx"
	}
	return "sqlite", "sqlite3"
}

// Up brings the schema to the latest version.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	dir, dialect := Dir(d)
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	return goose.UpContext(ctx, db, dir)
}
