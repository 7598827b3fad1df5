package documents

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// ClientDirectory resolves the display name copied into activity entries.
type ClientDirectory interface {
	ClientName(clientID string) (string, bool)
}

// Result classifies the outcome of an attempted transition.
type Result string

const (
	// ResultOK means the transition was applied and persisted.
	ResultOK Result = "ok"
	// ResultRejected means the lifecycle refused it, or the document is unknown.
	ResultRejected Result = "rejected"
	// ResultError means storage failed.
	ResultError Result = "error"
)

func resultOf(err error, refused bool) Result {
	switch {
	case err == nil:
		return ResultOK
	case refused:
		return ResultRejected
	default:
		return ResultError
	}
}

// Observer is notified of every attempted transition.
type Observer interface {
	ObserveTransition(t Transition, result Result)
}

// Manager owns document records in the store and enforces the lifecycle.
type Manager struct {
	store    *sdk.Store
	clients  ClientDirectory
	observer Observer
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for createdAt, signedAt and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides how document and log entry ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithClientDirectory sets the lookup for denormalized client names.
func WithClientDirectory(dir ClientDirectory) Option {
	return func(m *Manager) { m.clients = dir }
}

// WithObserver registers a transition observer (metrics).
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithLogger sets the logger for transition events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager constructs a Manager over store.
func NewManager(store *sdk.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) load() ([]schema.ClientDocument, error) {
	docs, err := sdk.Load[schema.ClientDocument](m.store, sdk.KeyDocuments)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Normalize()
	}
	return docs, nil
}

func indexOf(docs []schema.ClientDocument, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the document with the given id.
func (m *Manager) Get(id string) (schema.ClientDocument, error) {
	docs, err := m.load()
	if err != nil {
		return schema.ClientDocument{}, err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return schema.ClientDocument{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return docs[i], nil
}

// List returns the documents of one client, or all documents when clientID is empty.
func (m *Manager) List(clientID string) ([]schema.ClientDocument, error) {
	docs, err := m.load()
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return docs, nil
	}
	out := []schema.ClientDocument{}
	for _, d := range docs {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Create stores a new Draft document. Status and signature fields supplied by
// the caller are ignored.
func (m *Manager) Create(doc schema.ClientDocument) (schema.ClientDocument, error) {
	doc.ClientID = strings.TrimSpace(doc.ClientID)
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.ClientID == "" || doc.Title == "" {
		return schema.ClientDocument{}, fmt.Errorf("%w: client and title are required", ErrInvalidDocument)
	}
	doc.Status = schema.StatusDraft
	doc.SignedBy = ""
	doc.SignedAt = nil
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = m.now()
	}

	err := m.store.Update(func() (map[string]string, error) {
		docs, err := m.load()
		if err != nil {
			return nil, err
		}
		if doc.ID == "" {
			doc.ID = m.newID()
		} else if indexOf(docs, doc.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, doc.ID)
		}
		return m.batch(append(docs, doc), m.entry(doc, "Document Created"))
	})
	if err != nil {
		return schema.ClientDocument{}, err
	}
	m.logger.Info("document created", "doc_id", doc.ID, "client_id", doc.ClientID)
	return doc, nil
}

// SubmitForReview moves a Draft document to PendingReview.
func (m *Manager) SubmitForReview(id string) (schema.ClientDocument, error) {
	return m.Transition(id, Submit, "")
}

// Approve moves a PendingReview document to Approved.
func (m *Manager) Approve(id string) (schema.ClientDocument, error) {
	return m.Transition(id, Approve, "")
}

// Reject sends a PendingReview document back to Draft.
func (m *Manager) Reject(id string) (schema.ClientDocument, error) {
	return m.Transition(id, Reject, "")
}

// Sign finalizes an Approved document on behalf of signer.
func (m *Manager) Sign(id, signer string) (schema.ClientDocument, error) {
	return m.Transition(id, Sign, signer)
}

// Transition applies t to the document with the given id, persists it and
// appends the matching activity entry. Either both writes happen or the call fails.
func (m *Manager) Transition(id string, t Transition, signer string) (doc schema.ClientDocument, err error) {
	refused := false
	defer func() {
		if m.observer != nil {
			m.observer.ObserveTransition(t, resultOf(err, refused))
		}
	}()

	err = m.store.Update(func() (map[string]string, error) {
		docs, err := m.load()
		if err != nil {
			return nil, err
		}
		i := indexOf(docs, id)
		if i < 0 {
			refused = true
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		doc = docs[i]
		if err := Apply(&doc, t, signer, m.now()); err != nil {
			refused = true
			return nil, err
		}
		docs[i] = doc
		return m.batch(docs, m.entry(doc, "Document "+string(doc.Status)))
	})
	if err != nil {
		if refused {
			m.logger.Debug("transition refused", "doc_id", id, "transition", t, "error", err)
		} else {
			m.logger.Error("transition failed", "doc_id", id, "transition", t, "error", err)
		}
		return doc, err
	}
	m.logger.Info("document transitioned", "doc_id", id, "transition", t, "status", doc.Status)
	return doc, nil
}

// Delete hard-deletes a document regardless of its status.
func (m *Manager) Delete(id string) error {
	var removed schema.ClientDocument
	err := m.store.Update(func() (map[string]string, error) {
		docs, err := m.load()
		if err != nil {
			return nil, err
		}
		i := indexOf(docs, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		removed = docs[i]
		docs = append(docs[:i], docs[i+1:]...)
		return m.batch(docs, m.entry(removed, "Document Deleted"))
	})
	if err != nil {
		return err
	}
	m.logger.Info("document deleted", "doc_id", id, "status", removed.Status)
	return nil
}

func (m *Manager) entry(doc schema.ClientDocument, action string) schema.ActivityLogEntry {
	name := doc.ClientID
	if m.clients != nil {
		if n, ok := m.clients.ClientName(doc.ClientID); ok {
			name = n
		}
	}
	return schema.ActivityLogEntry{
		ID:         m.newID(),
		ClientID:   doc.ClientID,
		ClientName: name,
		Action:     action,
		Timestamp:  m.now(),
		Detail:     doc.Title,
	}
}

// batch computes the new documents and activity-log values so that Update
// hands both to the backend as one write.
func (m *Manager) batch(docs []schema.ClientDocument, entry schema.ActivityLogEntry) (map[string]string, error) {
	docsRaw, err := sdk.Encode(docs)
	if err != nil {
		return nil, fmt.Errorf("encode documents: %w", err)
	}
	logsRaw, err := m.store.NextLog(entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Action, err)
	}
	return map[string]string{
		sdk.KeyDocuments:   docsRaw,
		sdk.KeyActivityLog: logsRaw,
	}, nil
}
