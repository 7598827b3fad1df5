// Package clients keeps the firm's client register.
package clients

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

var (
	ErrNotFound    = errors.New("client not found")
	ErrNameMissing = errors.New("client name is required")
)

// Registry stores clients under the clients collection.
type Registry struct {
	store  *sdk.Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewRegistry constructs a Registry over store.
func NewRegistry(store *sdk.Store) *Registry {
	return &Registry{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
}

// List returns every client.
func (r *Registry) List() ([]schema.Client, error) {
	return sdk.Load[schema.Client](r.store, sdk.KeyClients)
}

// Get returns a single client.
func (r *Registry) Get(id string) (schema.Client, error) {
	list, err := r.List()
	if err != nil {
		return schema.Client{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return schema.Client{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ClientName implements documents.ClientDirectory.
func (r *Registry) ClientName(id string) (string, bool) {
	c, err := r.Get(id)
	if err != nil {
		return "", false
	}
	return c.Name, true
}

// Add registers a new client and records it in the activity log.
func (r *Registry) Add(c schema.Client) (schema.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return schema.Client{}, ErrNameMissing
	}
	if c.ID == "" {
		c.ID = r.newID()
	}
	c.CreatedAt = r.now()

	err := r.store.Update(func() (map[string]string, error) {
		list, err := r.List()
		if err != nil {
			return nil, err
		}
		return r.batch(append(list, c), r.entry(c, "Client Added", c.Email))
	})
	if err != nil {
		return schema.Client{}, err
	}
	r.logger.Info("client added", "client_id", c.ID)
	return c, nil
}

// Rename changes a client's display name. Activity entries written before the
// rename keep the old name.
func (r *Registry) Rename(id, name string) (schema.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Client{}, ErrNameMissing
	}

	var renamed schema.Client
	err := r.store.Update(func() (map[string]string, error) {
		list, err := r.List()
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].ID != id {
				continue
			}
			old := list[i].Name
			list[i].Name = name
			renamed = list[i]
			return r.batch(list, r.entry(renamed, "Client Renamed", "formerly "+old))
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		return schema.Client{}, err
	}
	r.logger.Info("client renamed", "client_id", renamed.ID)
	return renamed, nil
}

func (r *Registry) entry(c schema.Client, action, detail string) schema.ActivityLogEntry {
	return schema.ActivityLogEntry{
		ID:         r.newID(),
		ClientID:   c.ID,
		ClientName: c.Name,
		Action:     action,
		Timestamp:  r.now(),
		Detail:     detail,
	}
}

// batch pairs the new client list with the activity log so both land in one write.
func (r *Registry) batch(list []schema.Client, entry schema.ActivityLogEntry) (map[string]string, error) {
	raw, err := sdk.Encode(list)
	if err != nil {
		return nil, fmt.Errorf("encode clients: %w", err)
	}
	logs, err := r.store.NextLog(entry)
	if err != nil {
		return nil, err
	}
	return map[string]string{sdk.KeyClients: raw, sdk.KeyActivityLog: logs}, nil
}
