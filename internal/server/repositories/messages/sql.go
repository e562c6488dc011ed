// Package messages persists the message store.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/models"
)

// SQLRepository implements message storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create inserts m and returns the id the database assigned. m.ID is
// ignored.
func (r *SQLRepository) Create(ctx context.Context, m *models.Message) (int64, error) {
	query := dbx.Rebind(r.dialect, `
		INSERT INTO messages (sender_username, receiver_username, timestamp,
			payload_name, payload_type, payload_content, deletion_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		m.Sender, m.Receiver, m.Timestamp, m.PayloadName, m.PayloadType, m.Content, m.Deleted).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

const selectColumns = `id, sender_username, receiver_username, timestamp, payload_name, payload_type`

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT `+selectColumns+`, payload_content, deletion_flag FROM messages
		 WHERE id = ?`)

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Sender, &m.Receiver, &m.Timestamp, &m.PayloadName, &m.PayloadType, &m.Content, &m.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if m.Content == nil {
		m.Content = []byte{}
	}

	return m, nil
}

func (r *SQLRepository) ListForParticipant(ctx context.Context, username string, withContent bool) ([]models.Message, error) {
	content := "NULL"
	if withContent {
		content = "payload_content"
	}
	query := dbx.Rebind(r.dialect,
		`SELECT `+selectColumns+`, `+content+`, deletion_flag FROM messages
		 WHERE sender_username = ? OR receiver_username = ?
		 ORDER BY timestamp ASC, id ASC`)

	rows, err := r.db.QueryContext(ctx, query, username, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.Sender, &m.Receiver, &m.Timestamp, &m.PayloadName, &m.PayloadType, &m.Content, &m.Deleted,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if withContent && m.Content == nil {
			m.Content = []byte{}
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
