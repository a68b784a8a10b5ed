package models

import "time"

// LogEntry is an append-only audit record. Entries reference a user id but
// are never cascade-deleted with the user.
type LogEntry struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	UserID    string            `json:"user_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// LogFilter narrows a log query. Zero fields match everything.
type LogFilter struct {
	UserID string
	Action string
}
