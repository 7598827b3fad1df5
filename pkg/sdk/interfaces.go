// Package sdk is the namespaced persistence and backup store used by every
// firmdesk component. It layers typed collections, the activity log and
// backup/restore on top of a raw key-value Backend.
package sdk

// --- Functional Interfaces (Interface Segregation) ---

// KVReader defines the basic read operation for a backend.
type KVReader interface {
	Get(key string) (string, error)
}

// KVWriter defines the write and delete operations for a backend.
type KVWriter interface {
	Set(key, val string) error
	SetMany(items map[string]string) error
	Delete(key string) error
}

// KeyEnumeration allows discovering every key a backend holds.
type KeyEnumeration interface {
	Keys() ([]string, error)
}

// --- Composite Interfaces ---

// Backend is the raw durable storage a Store is built on.
// Every engine backend (file, SQLite, Postgres, memory) implements it.
type Backend interface {
	KVReader
	KVWriter
	KeyEnumeration
	Close() error
}
