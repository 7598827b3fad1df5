package sdk_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/firmdesk/internal/engine"
	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

func newStore(t *testing.T, opts ...sdk.Option) (*sdk.Store, *engine.MemStore) {
	t.Helper()
	mem := engine.NewMemStore(nil, nil)
	return sdk.New(mem, opts...), mem
}

func TestGetSave_RoundTrip(t *testing.T) {
	s, mem := newStore(t)

	docs := []schema.ClientDocument{
		{ID: "d1", ClientID: "c1", Title: "GST Computation", Status: schema.StatusDraft},
		{ID: "d2", ClientID: "c2", Title: "Audit Report", Status: schema.StatusApproved},
	}
	require.NoError(t, sdk.Save(s, sdk.KeyDocuments, docs))

	raw, err := mem.Get("firmdesk:documents")
	require.NoError(t, err)
	assert.Contains(t, raw, "GST Computation")

	got := sdk.Get[schema.ClientDocument](s, sdk.KeyDocuments)
	assert.Equal(t, docs, got)
}

func TestGet_MissingIsEmpty(t *testing.T) {
	s, _ := newStore(t)
	got := sdk.Get[schema.Client](s, sdk.KeyClients)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGet_CorruptValueIsEmptyAndReported(t *testing.T) {
	var logs bytes.Buffer
	var hooked []string
	s, mem := newStore(t,
		sdk.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		sdk.WithDecodeFailureHook(func(key string, err error) { hooked = append(hooked, key) }),
	)
	require.NoError(t, mem.Set("firmdesk:documents", "{definitely not json"))

	got := sdk.Get[schema.ClientDocument](s, sdk.KeyDocuments)
	assert.Empty(t, got)
	assert.Equal(t, []string{"firmdesk:documents"}, hooked)
	assert.Contains(t, logs.String(), "discarding undecodable collection")

	loaded, err := sdk.Load[schema.ClientDocument](s, sdk.KeyDocuments)
	require.NoError(t, err, "decode failures are never surfaced")
	assert.Empty(t, loaded)
}

func TestLogActivity_NewestFirst(t *testing.T) {
	s, _ := newStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.LogActivity(schema.ActivityLogEntry{ID: fmt.Sprint(i)}))
	}
	logs := s.GetLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, "2", logs[0].ID)
	assert.Equal(t, "0", logs[2].ID)
}

func TestLogActivity_RetentionBound(t *testing.T) {
	s, _ := newStore(t)
	limit := sdk.DefaultLogLimit
	for i := 0; i < limit+5; i++ {
		require.NoError(t, s.LogActivity(schema.ActivityLogEntry{
			ID:        fmt.Sprint(i),
			Timestamp: time.Unix(int64(i), 0).UTC(),
		}))
	}

	logs := s.GetLogs()
	require.Len(t, logs, limit)
	for i, e := range logs {
		assert.Equal(t, fmt.Sprint(limit+4-i), e.ID, "entry %d", i)
	}
}

func TestLogActivity_CustomLimit(t *testing.T) {
	s, _ := newStore(t, sdk.WithLogLimit(2))
	for i := 0; i < 4; i++ {
		require.NoError(t, s.LogActivity(schema.ActivityLogEntry{ID: fmt.Sprint(i)}))
	}
	logs := s.GetLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "3", logs[0].ID)
	assert.Equal(t, "2", logs[1].ID)
}

func TestLogActivity_ConcurrentAppendsAllKept(t *testing.T) {
	s, _ := newStore(t)
	const n = 40

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			assert.NoError(t, s.LogActivity(schema.ActivityLogEntry{ID: fmt.Sprint(i)}))
		}(i)
	}
	close(start)
	wg.Wait()

	logs := s.GetLogs()
	require.Len(t, logs, n)
	seen := map[string]bool{}
	for _, e := range logs {
		seen[e.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestUpdate_SerializesReadModifyWrite(t *testing.T) {
	s, _ := newStore(t)
	const n = 30

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Update(func() (map[string]string, error) {
				list, err := sdk.Load[schema.Client](s, sdk.KeyClients)
				if err != nil {
					return nil, err
				}
				raw, err := sdk.Encode(append(list, schema.Client{ID: fmt.Sprint(i)}))
				if err != nil {
					return nil, err
				}
				return map[string]string{sdk.KeyClients: raw}, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, sdk.Get[schema.Client](s, sdk.KeyClients), n)
}

func TestUpdate_ErrorWritesNothing(t *testing.T) {
	s, mem := newStore(t)
	boom := fmt.Errorf("boom")
	err := s.Update(func() (map[string]string, error) {
		return map[string]string{sdk.KeyClients: "[]"}, boom
	})
	assert.ErrorIs(t, err, boom)
	keys, _ := mem.Keys()
	assert.Empty(t, keys)
}

func TestGetLogs_BoundEnforcedOnRead(t *testing.T) {
	s, _ := newStore(t, sdk.WithLogLimit(3))
	oversized := make([]schema.ActivityLogEntry, 5)
	for i := range oversized {
		oversized[i] = schema.ActivityLogEntry{ID: fmt.Sprint(i)}
	}
	raw, err := sdk.Encode(oversized)
	require.NoError(t, err)
	_, err = s.RestoreBackup(fmt.Sprintf(`{%q: %q}`, s.Key(sdk.KeyActivityLog), raw))
	require.NoError(t, err)

	logs := s.GetLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, "0", logs[0].ID)
	assert.Equal(t, "2", logs[2].ID)
}

func TestPrependLog_DoesNotMutateInput(t *testing.T) {
	in := []schema.ActivityLogEntry{{ID: "a"}, {ID: "b"}}
	out := sdk.PrependLog(in, schema.ActivityLogEntry{ID: "c"}, 2)
	assert.Equal(t, []schema.ActivityLogEntry{{ID: "c"}, {ID: "a"}}, out)
	assert.Equal(t, "a", in[0].ID)
}

func TestHardReset_OnlyClearsNamespace(t *testing.T) {
	s, mem := newStore(t)
	require.NoError(t, sdk.Save(s, sdk.KeyClients, []schema.Client{{ID: "c1"}}))
	require.NoError(t, s.LogActivity(schema.ActivityLogEntry{ID: "1"}))
	require.NoError(t, mem.Set("other-app:settings", "{}"))

	n, err := s.HardReset()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, _ := mem.Keys()
	assert.Equal(t, []string{"other-app:settings"}, keys)
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []sdk.Driver{sdk.DriverFile, sdk.DriverSQLite, sdk.DriverMemory} {
		s, err := sdk.Open(sdk.BackendConfig{Driver: d, DataDir: dir})
		require.NoError(t, err, "driver %s", d)
		require.NoError(t, sdk.Save(s, sdk.KeyClients, []schema.Client{{ID: "c1"}}))
		assert.Len(t, sdk.Get[schema.Client](s, sdk.KeyClients), 1)
		require.NoError(t, s.Close())
	}

	_, err := sdk.Open(sdk.BackendConfig{Driver: "floppy"})
	assert.Error(t, err)
}
