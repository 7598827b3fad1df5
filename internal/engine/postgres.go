package engine

import (
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/firmdesk?sslmode=disable"

var postgresDialect = dialect{
	driver: "pgx",
	create: `CREATE TABLE IF NOT EXISTS kv_items (
		item_key TEXT PRIMARY KEY,
		item_value TEXT NOT NULL
	)`,
	get:    `SELECT item_value FROM kv_items WHERE item_key = $1`,
	upsert: `INSERT INTO kv_items(item_key, item_value) VALUES($1, $2) ON CONFLICT(item_key) DO UPDATE SET item_value = excluded.item_value`,
	delete: `DELETE FROM kv_items WHERE item_key = $1`,
	keys:   `SELECT item_key FROM kv_items ORDER BY item_key ASC`,
}

// OpenPostgres connects to Postgres using dsn (falls back to a local default).
func OpenPostgres(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	return openSQL(postgresDialect, dsn)
}
