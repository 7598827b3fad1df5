package schema

import "time"

// ChatMessage is one turn of an advisory conversation about a client.
type ChatMessage struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Role      string    `json:"role"` // "user" or "model"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
