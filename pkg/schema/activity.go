package schema

import "time"

// ActivityLogEntry is an immutable audit record of a firm action.
// ClientName is captured when the entry is written and is never refreshed.
type ActivityLogEntry struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Detail     string    `json:"detail,omitempty"`
}
