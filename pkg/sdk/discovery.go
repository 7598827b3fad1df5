package sdk

import (
	"fmt"
	"path/filepath"

	"github.com/celerix-dev/firmdesk/internal/engine"
)

// Driver names a Backend implementation.
type Driver string

const (
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

// BackendConfig selects and locates a backend.
type BackendConfig struct {
	Driver  Driver
	DataDir string // file and sqlite
	DSN     string // postgres
}

// OpenBackend constructs the backend named by cfg.Driver.
func OpenBackend(cfg BackendConfig) (Backend, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "./data"
	}
	switch cfg.Driver {
	case DriverFile, "":
		return engine.OpenFile(dataDir)
	case DriverSQLite:
		return engine.OpenSQLite(filepath.Join(dataDir, "firmdesk.db"))
	case DriverPostgres:
		return engine.OpenPostgres(cfg.DSN)
	case DriverMemory:
		return engine.NewMemStore(nil, nil), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Open initializes the backend described by cfg and wraps it in a Store.
func Open(cfg BackendConfig, opts ...Option) (*Store, error) {
	b, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}
