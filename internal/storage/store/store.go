// Package store implements the record store of the platform: persisted
// collections of users, subscriptions, vitrines, products, payments,
// audit logs and the email queue, with generated ids, timestamps, unique
// keys and cascade deletes.
//
// Every operation is synchronous and atomic with respect to the caller;
// a single mutex serializes access so the HTTP binding can share one
// instance across requests.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isdev18/vitrine-do-vendedor/internal/lib/password"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
)

// Collection keys inside the kv bucket.
const (
	keyUsers         = "users"
	keySubscriptions = "subscriptions"
	keyVitrines      = "vitrines"
	keyProdutos      = "produtos"
	keyPagamentos    = "pagamentos"
	keyLogs          = "logs"
	keyEmailsQueue   = "emails_queue"
	keyInitialized   = "initialized"
	keyTheme         = "theme"
)

// Default admin account seeded on first run.
const (
	adminEmail    = "admin@vitrinevendedor.com"
	adminPassword = "admin123"
	adminNome     = "Administrador"
)

// Store owns the persisted collections. Construct one per process and
// inject it into the services.
type Store struct {
	mu  sync.Mutex
	kv  kv.Store
	log *slog.Logger
}

// New wraps the kv bucket and bootstraps the collections and the default
// admin account on first run.
func New(bucket kv.Store, log *slog.Logger) (*Store, error) {
	const op = "store.New"

	s := &Store{kv: bucket, log: log}
	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	var initialized bool
	found, err := s.kv.Get(keyInitialized, &initialized)
	if err != nil {
		return err
	}
	if found && initialized {
		return nil
	}

	if err := s.kv.Set(keyUsers, []models.User{}); err != nil {
		return err
	}
	if err := s.kv.Set(keySubscriptions, []models.Subscription{}); err != nil {
		return err
	}
	if err := s.kv.Set(keyVitrines, []models.Vitrine{}); err != nil {
		return err
	}
	if err := s.kv.Set(keyProdutos, []models.Produto{}); err != nil {
		return err
	}
	if err := s.kv.Set(keyPagamentos, []models.Pagamento{}); err != nil {
		return err
	}
	if err := s.kv.Set(keyLogs, []models.LogEntry{}); err != nil {
		return err
	}
	if err := s.kv.Set(keyEmailsQueue, []models.QueuedEmail{}); err != nil {
		return err
	}

	hash, err := password.GetHash(adminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := models.User{
		ID:        newID(),
		Email:     adminEmail,
		SenhaHash: hash,
		Nome:      adminNome,
		Role:      models.RoleAdmin,
		Status:    models.UserStatusAtivo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.kv.Set(keyUsers, []models.User{admin}); err != nil {
		return err
	}

	if err := s.kv.Set(keyInitialized, true); err != nil {
		return err
	}
	s.log.Info("record store initialized", slog.String("admin", adminEmail))
	return nil
}

// Reset wipes every collection and re-bootstraps the store. Development
// helper only.
func (s *Store) Reset() error {
	const op = "store.Reset"

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := s.initialize(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetTheme stores the UI theme preference.
func (s *Store) SetTheme(theme string) error {
	const op = "store.SetTheme"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(keyTheme, theme); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Theme returns the stored UI theme preference, empty when unset.
func (s *Store) Theme() (string, error) {
	const op = "store.Theme"

	s.mu.Lock()
	defer s.mu.Unlock()
	var theme string
	if _, err := s.kv.Get(keyTheme, &theme); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return theme, nil
}

func newID() string {
	return uuid.NewString()
}

// load reads a whole collection from the bucket. A missing key yields an
// empty slice.
func load[T any](s *Store, key string) ([]T, error) {
	var items []T
	if _, err := s.kv.Get(key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func save[T any](s *Store, key string, items []T) error {
	return s.kv.Set(key, items)
}
