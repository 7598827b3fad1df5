// Package engine provides the raw durable key-value backends behind the firmdesk store.
package engine

import "errors"

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Backend is a flat string-to-string durable store, the server-side stand-in
// for browser local storage. Values are opaque serialized strings.
type Backend interface {
	// Get returns the raw value stored under key or ErrKeyNotFound.
	Get(key string) (string, error)
	// Set overwrites the value stored under key.
	Set(key, val string) error
	// SetMany writes every pair back-to-back. Backends that can do so apply
	// the whole batch atomically.
	SetMany(items map[string]string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every key in ascending order.
	Keys() ([]string, error)
	// Close releases the backend's resources.
	Close() error
}
