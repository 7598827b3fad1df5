package schema

import "time"

// Client represents a customer of the firm.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PAN       string    `json:"pan,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
