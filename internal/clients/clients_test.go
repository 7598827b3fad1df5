package clients

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/firmdesk/internal/engine"
	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

func TestRegistry_AddGetList(t *testing.T) {
	store := sdk.New(engine.NewMemStore(nil, nil))
	r := NewRegistry(store)

	c, err := r.Add(schema.Client{Name: "  Acme Traders ", PAN: "AAACA1234A"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", c.Name)
	assert.NotEmpty(t, c.ID)

	got, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "AAACA1234A", got.PAN)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	list, err := r.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	logs := store.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Client Added", logs[0].Action)
	assert.Equal(t, "Acme Traders", logs[0].ClientName)

	_, err = r.Add(schema.Client{Name: " "})
	assert.ErrorIs(t, err, ErrNameMissing)
	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_RenameKeepsOldLogNames(t *testing.T) {
	store := sdk.New(engine.NewMemStore(nil, nil))
	r := NewRegistry(store)
	c, err := r.Add(schema.Client{Name: "Old Name LLP"})
	require.NoError(t, err)

	renamed, err := r.Rename(c.ID, "New Name LLP")
	require.NoError(t, err)
	assert.Equal(t, "New Name LLP", renamed.Name)

	name, ok := r.ClientName(c.ID)
	assert.True(t, ok)
	assert.Equal(t, "New Name LLP", name)

	logs := store.GetLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "New Name LLP", logs[0].ClientName)
	assert.Equal(t, "Old Name LLP", logs[1].ClientName, "earlier entries are a point-in-time snapshot")

	_, err = r.Rename("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_ConcurrentAdds(t *testing.T) {
	store := sdk.New(engine.NewMemStore(nil, nil))
	r := NewRegistry(store)
	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Add(schema.Client{Name: fmt.Sprintf("Client %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := r.List()
	require.NoError(t, err)
	assert.Len(t, list, n)
	assert.Len(t, store.GetLogs(), n)
}
