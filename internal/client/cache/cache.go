// Package cache keeps a local SQLite copy of fetched messages so the inbox
// can be browsed offline.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/fe/internal/client/cache/migrations"
	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/filex"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/pressly/goose/v3"
)

// KeyLastFetch holds the unix time of the last successful fetch.
const KeyLastFetch = "last_fetch"

type Cache struct {
	db  *sql.DB
	now func() time.Time
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the inbox database at path.
func Open(ctx context.Context, path string) (*Cache, error) {
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := dbx.Open(dbx.DialectSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache migrations: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Store upserts messages. A message without content keeps content cached
// earlier.
func (c *Cache) Store(ctx context.Context, ms []models.Message) error {
	fetchedAt := c.now().Unix()

	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, m := range ms {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO messages (id, sender, receiver, timestamp, payload_name, payload_type, content, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					sender = excluded.sender,
					receiver = excluded.receiver,
					timestamp = excluded.timestamp,
					payload_name = excluded.payload_name,
					payload_type = excluded.payload_type,
					content = COALESCE(excluded.content, messages.content),
					fetched_at = excluded.fetched_at
			`, m.ID, m.Sender, m.Receiver, m.Timestamp, m.PayloadName, m.PayloadType, m.Content, fetchedAt)
			if err != nil {
				return fmt.Errorf("failed to store message %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

const selectColumns = `SELECT id, sender, receiver, timestamp, payload_name, payload_type, content FROM messages`

// List returns cached messages, oldest first.
func (c *Cache) List(ctx context.Context) ([]models.Message, error) {
	rows, err := c.db.QueryContext(ctx, selectColumns+` ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}

// Get returns a cached message or common.ErrorNotFound.
func (c *Cache) Get(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanMessage(c.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*models.Message, error) {
	var m models.Message
	if err := s.Scan(&m.ID, &m.Sender, &m.Receiver, &m.Timestamp, &m.PayloadName, &m.PayloadType, &m.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return &m, nil
}

// GetMeta returns the value stored under key, or nil.
func (c *Cache) GetMeta(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (c *Cache) SetMeta(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
