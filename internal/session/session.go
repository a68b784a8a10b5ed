// Package session persists the login session. Two buckets mirror the
// browser's storage split: a durable one for "remember me" sessions and a
// process-scoped one for the rest. The session record is mirrored by
// token and user keys so the presentation layer can read them directly.
package session

import (
	"fmt"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
)

const (
	keySession = "session"
	keyToken   = "auth_token"
	keyUser    = "current_user"
)

// Manager reads and writes the persisted session.
type Manager struct {
	durable  kv.Store
	volatile kv.Store
}

// NewManager takes the durable bucket and the session-scoped one.
func NewManager(durable, volatile kv.Store) *Manager {
	return &Manager{durable: durable, volatile: volatile}
}

// Save persists the session in the bucket selected by its Remember flag
// and mirrors the token and user keys.
func (m *Manager) Save(sess models.Session) error {
	const op = "session.Save"

	bucket := m.volatile
	if sess.Remember {
		bucket = m.durable
	}
	if err := bucket.Set(keySession, sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := bucket.Set(keyToken, sess.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := bucket.Set(keyUser, sess.User); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Current returns the stored session, durable bucket first, or nil when
// no session exists.
func (m *Manager) Current() (*models.Session, error) {
	const op = "session.Current"

	for _, bucket := range []kv.Store{m.durable, m.volatile} {
		var sess models.Session
		found, err := bucket.Get(keySession, &sess)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if found {
			return &sess, nil
		}
	}
	return nil, nil
}

// Clear removes the session and its mirrored keys from both buckets.
func (m *Manager) Clear() error {
	const op = "session.Clear"

	for _, bucket := range []kv.Store{m.durable, m.volatile} {
		for _, key := range []string{keySession, keyToken, keyUser} {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	return nil
}
