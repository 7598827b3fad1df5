package sdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidBackup is returned when restore content is not a backup package.
var ErrInvalidBackup = errors.New("invalid backup package")

// BackupContentType is the MIME type of a serialized backup package.
const BackupContentType = "application/json"

// BackupFileName names a backup package taken at t.
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("firmdesk-backup-%s.json", t.UTC().Format("20060102T150405Z"))
}

// CreateBackup serializes every key inside the namespace as a flat JSON object
// of storage key to raw value. Keys outside the namespace are never included.
func (s *Store) CreateBackup() (string, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return "", fmt.Errorf("list keys: %w", err)
	}
	pkg := make(map[string]string, len(keys))
	for _, k := range keys {
		if !s.Owns(k) {
			continue
		}
		v, err := s.backend.Get(k)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", k, err)
		}
		pkg[k] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pkg); err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// RestoreBackup writes every namespaced key of a package produced by
// CreateBackup and returns how many keys were written. Keys that are not in
// the package are left untouched. Content that does not parse as a package
// fails with ErrInvalidBackup before anything is written.
func (s *Store) RestoreBackup(content string) (int, error) {
	var pkg map[string]string
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if pkg == nil {
		return 0, fmt.Errorf("%w: not an object", ErrInvalidBackup)
	}

	batch := make(map[string]string, len(pkg))
	for k, v := range pkg {
		if !s.Owns(k) {
			s.logger.Warn("skipping foreign key in backup", "key", k)
			continue
		}
		batch[k] = v
	}
	if len(batch) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.SetMany(batch); err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	return len(batch), nil
}
