package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var sqliteDialect = dialect{
	driver: "sqlite",
	create: `CREATE TABLE IF NOT EXISTS kv_items (
		item_key TEXT PRIMARY KEY,
		item_value TEXT NOT NULL
	)`,
	get:    `SELECT item_value FROM kv_items WHERE item_key = ?`,
	upsert: `INSERT INTO kv_items(item_key, item_value) VALUES(?, ?) ON CONFLICT(item_key) DO UPDATE SET item_value = excluded.item_value`,
	delete: `DELETE FROM kv_items WHERE item_key = ?`,
	keys:   `SELECT item_key FROM kv_items ORDER BY item_key ASC`,
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// OpenSQLite opens (or creates) a SQLite database file at path.
func OpenSQLite(path string) (*SQLStore, error) {
	if path == "" {
		path = "firmdesk.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	s, err := openSQL(sqliteDialect, path)
	if err != nil {
		return nil, err
	}
	s.db.SetMaxOpenConns(1)
	s.db.SetMaxIdleConns(1)
	for _, pragma := range sqlitePragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			_ = s.db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return s, nil
}
