package engine

import "fmt"

// Migrate copies every key from a source backend into a destination backend.
// This works for:
// - File -> SQLite/Postgres (the "upgrade")
// - SQLite/Postgres -> File (the offline copy)
// Keys already present in dst and absent from src are left alone.
func Migrate(src, dst Backend) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	batch := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := src.Get(k)
		if err != nil {
			return 0, fmt.Errorf("failed to read key %s: %w", k, err)
		}
		batch[k] = v
	}

	if err := dst.SetMany(batch); err != nil {
		return 0, fmt.Errorf("failed to write destination: %w", err)
	}
	return len(batch), nil
}
