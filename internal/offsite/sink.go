// Package offsite copies backup packages to storage outside the data directory.
package offsite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// NamePrefix starts every backup object name.
const NamePrefix = "firmdesk-backup-"

var ErrNotFound = errors.New("backup object not found")

// Object describes one stored backup package.
type Object struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Sink stores backup packages by name.
type Sink interface {
	Put(ctx context.Context, name string, content []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns backup objects sorted by name, which is also oldest first.
	List(ctx context.Context) ([]Object, error)
}

// Push takes a backup of store and writes it to sink under a timestamped name.
func Push(ctx context.Context, store *sdk.Store, sink Sink, now time.Time) (string, int, error) {
	content, err := store.CreateBackup()
	if err != nil {
		return "", 0, err
	}
	name := sdk.BackupFileName(now)
	if err := sink.Put(ctx, name, []byte(content)); err != nil {
		return "", 0, fmt.Errorf("push %s: %w", name, err)
	}
	return name, len(content), nil
}

// Pull restores the named backup from sink into store. An empty name or
// "latest" selects the newest object.
func Pull(ctx context.Context, store *sdk.Store, sink Sink, name string) (string, int, error) {
	if name == "" || name == "latest" {
		objs, err := sink.List(ctx)
		if err != nil {
			return "", 0, err
		}
		if len(objs) == 0 {
			return "", 0, ErrNotFound
		}
		name = objs[len(objs)-1].Name
	}
	content, err := sink.Get(ctx, name)
	if err != nil {
		return name, 0, err
	}
	n, err := store.RestoreBackup(string(content))
	return name, n, err
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, NamePrefix) && strings.HasSuffix(name, ".json")
}
