package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/celerix-dev/firmdesk/internal/engine"
)

const (
	// DefaultPrefix is the reserved namespace every firmdesk key starts with.
	DefaultPrefix = "firmdesk:"
	// DefaultLogLimit is how many activity entries are retained.
	DefaultLogLimit = 100
)

// Collection names, stored as <prefix><name>.
const (
	KeyDocuments   = "documents"
	KeyActivityLog = "activity-log"
	KeyClients     = "clients"
	KeyInvoices    = "invoices"
	KeyChatHistory = "chat-history"
)

// Store is a namespaced view over a Backend. Collections are whole-value
// replaced: callers read the full slice, modify it and save it back inside
// Update, which serializes those read-modify-write cycles within the process.
// Two processes sharing one backend can still lose each other's updates.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	prefix   string
	logLimit int
	logger   *slog.Logger
	onDecode func(key string, err error)
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the reserved namespace prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogLimit overrides the activity log retention bound.
func WithLogLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.logLimit = n
		}
	}
}

// WithLogger routes store diagnostics (swallowed decode failures) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecodeFailureHook registers fn to observe values that failed to decode.
func WithDecodeFailureHook(fn func(key string, err error)) Option {
	return func(s *Store) { s.onDecode = fn }
}

// New wraps backend in a namespaced Store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		prefix:   DefaultPrefix,
		logLimit: DefaultLogLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prefix returns the reserved namespace prefix.
func (s *Store) Prefix() string { return s.prefix }

// LogLimit returns the activity log retention bound.
func (s *Store) LogLimit() int { return s.logLimit }

// Backend returns the underlying raw storage.
func (s *Store) Backend() Backend { return s.backend }

// Key returns the namespaced storage key for a collection name.
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// Owns reports whether a raw storage key lies inside the namespace.
func (s *Store) Owns(key string) bool {
	return strings.HasPrefix(key, s.prefix)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Raw returns the serialized value of a collection and whether it exists.
func (s *Store) Raw(name string) (string, bool, error) {
	val, err := s.backend.Get(s.Key(name))
	if errors.Is(err, engine.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// WriteRaw writes serialized collection values back-to-back in one batch.
// Map keys are collection names, not storage keys.
func (s *Store) WriteRaw(values map[string]string) error {
	batch := make(map[string]string, len(values))
	for name, v := range values {
		batch[s.Key(name)] = v
	}
	return s.backend.SetMany(batch)
}

// Update runs fn while holding the store's write lock and writes the
// collection values it returns as one batch. fn reads current state with Load
// and must not call Update, LogActivity, RestoreBackup or HardReset.
// A nil or empty map writes nothing.
func (s *Store) Update(fn func() (map[string]string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := fn()
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return s.WriteRaw(values)
}

// Load returns the collection stored under name. A missing key or a value
// that fails to decode yields an empty slice; decode failures are reported to
// the diagnostic logger, never to the caller. Only backend I/O errors are returned.
func Load[T any](s *Store, name string) ([]T, error) {
	raw, ok, err := s.Raw(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	items := []T{}
	if !ok {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.decodeFailed(name, err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get is Load with backend errors also downgraded to an empty result.
func Get[T any](s *Store, name string) []T {
	items, err := Load[T](s, name)
	if err != nil {
		s.logger.Error("store read failed", "key", s.Key(name), "error", err)
		return []T{}
	}
	return items
}

// Save serializes items and overwrites the collection stored under name.
func Save[T any](s *Store, name string, items []T) error {
	raw, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.backend.Set(s.Key(name), raw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Encode serializes a collection the way Save stores it.
func Encode[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) decodeFailed(name string, err error) {
	s.logger.Warn("discarding undecodable collection", "key", s.Key(name), "error", err)
	if s.onDecode != nil {
		s.onDecode(s.Key(name), err)
	}
}

// HardReset removes every key inside the namespace and returns how many were removed.
func (s *Store) HardReset() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.backend.Keys()
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	removed := 0
	for _, k := range keys {
		if !s.Owns(k) {
			continue
		}
		if err := s.backend.Delete(k); err != nil {
			return removed, fmt.Errorf("delete %s: %w", k, err)
		}
		removed++
	}
	return removed, nil
}
