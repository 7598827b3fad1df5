package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "firmdesk.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_GetSetDelete(t *testing.T) {
	s := openTestSQLite(t)

	if err := s.Set("k1", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("k1", "v2"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := s.Get("k1")
	if err != nil || got != "v2" {
		t.Errorf("Expected v2, got %v (err %v)", got, err)
	}

	if _, err := s.Get("missing"); err != ErrKeyNotFound {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Delete("k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("k1"); err != ErrKeyNotFound {
		t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestSQLite_SetManyAndKeys(t *testing.T) {
	s := openTestSQLite(t)

	err := s.SetMany(map[string]string{"b": "2", "a": "1", "c": "3"})
	if err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("Expected [a b c], got %v", keys)
	}

	var rows int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM kv_items`).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 3 {
		t.Errorf("Expected 3 rows in kv_items, got %d", rows)
	}
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firmdesk.db")
	s1, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("first OpenSQLite failed: %v", err)
	}
	s1.Set("k", "v")
	s1.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("second OpenSQLite failed: %v", err)
	}
	defer s2.Close()
	if v, _ := s2.Get("k"); v != "v" {
		t.Errorf("Expected v after reopen, got %q", v)
	}
}

func TestPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("FIRMDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FIRMDESK_TEST_POSTGRES_DSN not set")
	}
	s, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer s.Close()

	if err := s.Set("firmdesk:test", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer s.Delete("firmdesk:test")
	if v, err := s.Get("firmdesk:test"); err != nil || v != "v" {
		t.Errorf("Expected v, got %q (err %v)", v, err)
	}

	var stored string
	err = s.DB().QueryRow(`SELECT item_value FROM kv_items WHERE item_key = $1`, "firmdesk:test").Scan(&stored)
	if err != nil || stored != "v" {
		t.Errorf("Expected v in kv_items, got %q (err %v)", stored, err)
	}
}
