package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/cake-orders/internal/port"
)

// Schema expected by MySQLAdapter.
const DraftsTable = `
CREATE TABLE IF NOT EXISTS order_drafts (
	draft_key  VARCHAR(191) NOT NULL PRIMARY KEY,
	payload    JSON         NOT NULL,
	updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, DraftsTable); err != nil {
		return fmt.Errorf("create order_drafts: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Save(ctx context.Context, key string, blob []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO order_drafts (draft_key, payload) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
		key, string(blob),
	)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM order_drafts WHERE draft_key = ?`, key,
	).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query draft: %w", err)
	}
	return blob, nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM order_drafts WHERE draft_key = ?`, key); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
