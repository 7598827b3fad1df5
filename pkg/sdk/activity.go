package sdk

import (
	"fmt"

	"github.com/celerix-dev/firmdesk/pkg/schema"
)

// PrependLog returns logs with entry placed first and the tail trimmed to limit.
// It does not touch storage; callers that need to write the log together with
// another collection use it to compute the new value up front.
func PrependLog(logs []schema.ActivityLogEntry, entry schema.ActivityLogEntry, limit int) []schema.ActivityLogEntry {
	out := make([]schema.ActivityLogEntry, 0, min(len(logs)+1, limit))
	out = append(out, entry)
	for _, e := range logs {
		if len(out) >= limit {
			break
		}
		out = append(out, e)
	}
	return out
}

// NextLog returns the serialized activity log with entry prepended, ready to
// be written next to another collection from inside Update.
func (s *Store) NextLog(entry schema.ActivityLogEntry) (string, error) {
	logs, err := Load[schema.ActivityLogEntry](s, KeyActivityLog)
	if err != nil {
		return "", err
	}
	raw, err := Encode(PrependLog(logs, entry, s.logLimit))
	if err != nil {
		return "", fmt.Errorf("encode activity log: %w", err)
	}
	return raw, nil
}

// LogActivity prepends entry to the activity log, dropping the oldest entries
// beyond the retention bound.
func (s *Store) LogActivity(entry schema.ActivityLogEntry) error {
	err := s.Update(func() (map[string]string, error) {
		raw, err := s.NextLog(entry)
		if err != nil {
			return nil, err
		}
		return map[string]string{KeyActivityLog: raw}, nil
	})
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// GetLogs returns the retained activity log, newest first. A log stored with
// more entries than the bound, from a restored package or a lowered limit, is
// cut to the newest entries.
func (s *Store) GetLogs() []schema.ActivityLogEntry {
	logs := Get[schema.ActivityLogEntry](s, KeyActivityLog)
	if len(logs) > s.logLimit {
		logs = logs[:s.logLimit]
	}
	return logs
}
