package wizard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

const createStatesTable = `
CREATE TABLE IF NOT EXISTS wizard_states (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

// SQLiteStorage persists wizard state in a SQLite table, so runs survive
// process restarts and can be shared between instances pointing at the same
// file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage migrates the backing table and returns the store. The
// caller owns the database handle.
func NewSQLiteStorage(ctx context.Context, db *sql.DB) (*SQLiteStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("wizard: database handle is required")
	}
	if _, err := db.ExecContext(ctx, createStatesTable); err != nil {
		return nil, fmt.Errorf("wizard: migrate state table: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Load(ctx context.Context, id string) (*State, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM wizard_states WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wizard: load state %q: %w", id, err)
	}

	var state State
	if err := sonic.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("wizard: decode state %q: %w", id, err)
	}
	return &state, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, id string, state *State) error {
	if state == nil {
		return fmt.Errorf("wizard: state is required")
	}
	payload, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("wizard: encode state %q: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO wizard_states (id, payload, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
ON CONFLICT(id) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at`, id, string(payload))
	if err != nil {
		return fmt.Errorf("wizard: save state %q: %w", id, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wizard_states WHERE id = ?`, id); err != nil {
		return fmt.Errorf("wizard: delete state %q: %w", id, err)
	}
	return nil
}
