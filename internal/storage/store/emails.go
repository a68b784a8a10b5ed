package store

import (
	"fmt"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// QueueEmail enqueues a notification for the user. A deleted recipient is
// skipped silently, matching the original behaviour.
func (s *Store) QueueEmail(tipo, userID string, data map[string]string) error {
	const op = "store.QueueEmail"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userByIDLocked(userID)
	if err != nil {
		return nil
	}

	queue, err := load[models.QueuedEmail](s, keyEmailsQueue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	queue = append(queue, models.QueuedEmail{
		ID:        newID(),
		Tipo:      tipo,
		UserID:    userID,
		EmailTo:   user.Email,
		Data:      data,
		Status:    models.EmailStatusPendente,
		CreatedAt: time.Now().UTC(),
	})
	if err := save(s, keyEmailsQueue, queue); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PendingEmails returns the queued emails still waiting for delivery.
func (s *Store) PendingEmails() ([]models.QueuedEmail, error) {
	const op = "store.PendingEmails"

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := load[models.QueuedEmail](s, keyEmailsQueue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var pending []models.QueuedEmail
	for _, e := range queue {
		if e.Status == models.EmailStatusPendente {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// MarkEmailSent flips a queued email to enviado, stamps sent_at and bumps
// the attempt counter.
func (s *Store) MarkEmailSent(id string) error {
	const op = "store.MarkEmailSent"

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := load[models.QueuedEmail](s, keyEmailsQueue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range queue {
		if queue[i].ID == id {
			now := time.Now().UTC()
			queue[i].Status = models.EmailStatusEnviado
			queue[i].SentAt = &now
			queue[i].Attempts++
			if err := save(s, keyEmailsQueue, queue); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// MarkEmailAttempt bumps the attempt counter of a queued email without
// changing its status, for failed deliveries.
func (s *Store) MarkEmailAttempt(id string) error {
	const op = "store.MarkEmailAttempt"

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := load[models.QueuedEmail](s, keyEmailsQueue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range queue {
		if queue[i].ID == id {
			queue[i].Attempts++
			if err := save(s, keyEmailsQueue, queue); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%s: %w", op, models.ErrNotFound)
}
