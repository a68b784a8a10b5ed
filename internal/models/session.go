package models

import "time"

// Session is the persisted login session. User is a sanitized snapshot of
// the account at login time; Remember selects durable storage over
// session-scoped storage.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Remember  bool      `json:"remember"`
}

// Expired reports whether the session's expiry is in the past.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
