package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

var sqlOpen = sql.Open

// queryTimeout bounds every statement; the store API itself takes no context.
const queryTimeout = 10 * time.Second

type dialect struct {
	driver string
	create string
	get    string
	upsert string
	delete string
	keys   string
}

// SQLStore keeps each key as one row of the kv_items table.
type SQLStore struct {
	db *sql.DB
	d  dialect
	mu sync.Mutex // serializes writers; SQLite allows a single writer anyway
}

func openSQL(d dialect, dsn string) (*SQLStore, error) {
	db, err := sqlOpen(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLStore{db: db, d: d}, nil
}

func (s *SQLStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var val string
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return val, nil
}

func (s *SQLStore) Set(key, val string) error {
	return s.SetMany(map[string]string{key: val})
}

// SetMany upserts the batch inside one transaction.
func (s *SQLStore) SetMany(items map[string]string) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for k, v := range items {
		if _, err := tx.ExecContext(ctx, s.d.upsert, k, v); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, s.d.delete, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Keys() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.d.keys)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		list = append(list, k)
	}
	return list, rows.Err()
}

// DB exposes the underlying sql.DB so tests can inspect the kv_items table directly.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
