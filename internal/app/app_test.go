package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/firmdesk/internal/config"
	"github.com/celerix-dev/firmdesk/internal/offsite"
	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

func TestNew_SQLiteWiring(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = sdk.DriverSQLite
	cfg.DataDir = t.TempDir()

	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	c, err := a.Clients.Add(schema.Client{Name: "Acme Traders"})
	require.NoError(t, err)
	_, err = a.Docs.Create(schema.ClientDocument{ClientID: c.ID, Title: "GST Computation"})
	require.NoError(t, err)

	logs := a.Store.GetLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "Acme Traders", logs[0].ClientName)

	h := a.Handler(nil)
	assert.Same(t, a.Docs, h.Docs)
	assert.Nil(t, h.Advisor)
}

func TestSink_Selection(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = sdk.DriverMemory

	a, err := New(cfg, nil)
	require.NoError(t, err)
	_, err = a.Sink(context.Background())
	assert.ErrorIs(t, err, ErrNoSink)

	a.Config.OffsiteDir = t.TempDir()
	sink, err := a.Sink(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &offsite.DirSink{}, sink)
}
