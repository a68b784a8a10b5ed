package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// CreateUserParams carries the fields for a new account. SenhaHash must
// already be a one-way hash; the store never sees raw passwords.
type CreateUserParams struct {
	Email     string
	SenhaHash string
	Nome      string
	Telefone  string
}

// CreateUser inserts a new user with status pendente, creates its vitrine
// and logs user_created. Fails with models.ErrDuplicateKey when the
// normalized email is taken.
func (s *Store) CreateUser(params CreateUserParams) (*models.User, error) {
	const op = "store.CreateUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email := NormalizeEmail(params.Email)
	for _, u := range users {
		if u.Email == email {
			return nil, fmt.Errorf("%s: email %s: %w", op, email, models.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        newID(),
		Email:     email,
		SenhaHash: params.SenhaHash,
		Nome:      params.Nome,
		Telefone:  params.Telefone,
		Role:      models.RoleUser,
		Status:    models.UserStatusPendente,
		CreatedAt: now,
		UpdatedAt: now,
	}
	users = append(users, user)
	if err := save(s, keyUsers, users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.createVitrineLocked(user.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("user_created", user.ID, map[string]string{"email": user.Email})
	return &user, nil
}

// UserByID returns the user or models.ErrNotFound.
func (s *Store) UserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByIDLocked(id)
}

func (s *Store) userByIDLocked(id string) (*models.User, error) {
	const op = "store.UserByID"

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// UserByEmail returns the user with the normalized email or
// models.ErrNotFound.
func (s *Store) UserByEmail(email string) (*models.User, error) {
	const op = "store.UserByEmail"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	email = NormalizeEmail(email)
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// UserByResetToken returns the user holding a non-expired reset token, or
// models.ErrNotFound.
func (s *Store) UserByResetToken(token string) (*models.User, error) {
	const op = "store.UserByResetToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().UTC()
	for i := range users {
		u := &users[i]
		if u.ResetToken == token && token != "" &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// UpdateUser merges the non-nil fields into the record, refreshes
// updated_at and logs user_updated.
func (s *Store) UpdateUser(id string, update models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateUserLocked(id, update)
}

func (s *Store) updateUserLocked(id string, update models.UserUpdate) (*models.User, error) {
	const op = "store.UpdateUser"

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	u := &users[idx]
	if update.Nome != nil {
		u.Nome = *update.Nome
	}
	if update.Telefone != nil {
		u.Telefone = *update.Telefone
	}
	if update.Status != nil {
		u.Status = *update.Status
	}
	if update.PlanoID != nil {
		u.PlanoID = *update.PlanoID
	}
	if update.SenhaHash != nil {
		u.SenhaHash = *update.SenhaHash
	}
	if update.ResetToken != nil {
		u.ResetToken = *update.ResetToken
	}
	if update.ResetTokenExpires != nil || update.ResetToken != nil {
		u.ResetTokenExpires = update.ResetTokenExpires
	}
	u.UpdatedAt = time.Now().UTC()

	if err := save(s, keyUsers, users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("user_updated", id, nil)
	out := users[idx]
	return &out, nil
}

// Users returns every account.
func (s *Store) Users() ([]models.User, error) {
	const op = "store.Users"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// DeleteUser removes the account and cascades to its vitrine, products
// and subscriptions. Audit log entries are kept.
func (s *Store) DeleteUser(id string) error {
	const op = "store.DeleteUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if err := save(s, keyUsers, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.deleteVitrineByUserLocked(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.deleteSubscriptionsByUserLocked(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("user_deleted", id, nil)
	return nil
}

// NormalizeEmail lower-cases and trims an email so lookups and unique
// checks agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
