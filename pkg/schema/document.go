// Package schema defines the records persisted by firmdesk.
package schema

import (
	"encoding/json"
	"time"
)

// DocumentStatus is the maker-checker lifecycle state of a ClientDocument.
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "Draft"
	StatusPendingReview DocumentStatus = "PendingReview"
	StatusApproved      DocumentStatus = "Approved"
	StatusSigned        DocumentStatus = "Signed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusSigned:
		return true
	}
	return false
}

// UnmarshalJSON decodes a status. Null and the empty string decode to Draft.
func (s *DocumentStatus) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*s = StatusDraft
		return nil
	}
	*s = DocumentStatus(*raw)
	return nil
}

// ClientDocument is a work product (tax computation, audit report, notice reply)
// attached to exactly one client.
type ClientDocument struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"clientId"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Status    DocumentStatus `json:"status"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	SignedBy  string         `json:"signedBy,omitempty"`
	SignedAt  *time.Time     `json:"signedAt,omitempty"`
}

// Normalize fills in the Draft default for documents whose status field was
// never written, e.g. documents built in memory rather than decoded.
func (d *ClientDocument) Normalize() {
	if d.Status == "" {
		d.Status = StatusDraft
	}
}
