package objects

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database at path with WAL journaling, foreign keys, and
// a busy timeout suitable for concurrent request handlers.
func Open(path string) (*sql.DB, error) {
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("objects: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("objects: ping database: %w", err)
	}
	return db, nil
}
