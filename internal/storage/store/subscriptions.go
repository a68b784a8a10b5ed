package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// CreateSubscription starts a trial subscription for the plan, cancelling
// any previous non-cancelled one first so at most one stays live per user.
// The owning user becomes ativo with the plan set.
func (s *Store) CreateSubscription(userID string, plano config.Plano, trial, period time.Duration) (*models.Subscription, error) {
	const op = "store.CreateSubscription"

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	for i := range subs {
		if subs[i].UserID == userID && subs[i].Status != models.SubscriptionStatusCancelado {
			cancelled := now
			subs[i].Status = models.SubscriptionStatusCancelado
			subs[i].CancelledAt = &cancelled
			subs[i].UpdatedAt = now
		}
	}

	sub := models.Subscription{
		ID:                 newID(),
		UserID:             userID,
		PlanoID:            plano.ID,
		PlanoNome:          plano.Nome,
		Valor:              plano.Preco,
		Status:             models.SubscriptionStatusTrial,
		TrialEndsAt:        now.Add(trial),
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(period),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	subs = append(subs, sub)
	if err := save(s, keySubscriptions, subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.UserStatusAtivo
	planoID := plano.ID
	if _, err := s.updateUserLocked(userID, models.UserUpdate{Status: &status, PlanoID: &planoID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("subscription_created", userID, map[string]string{"plano": plano.ID})
	return &sub, nil
}

// SubscriptionByUserID returns the user's non-cancelled subscription or
// models.ErrNoSubscription. Cancelled subscriptions are invisible here,
// which is what makes cancellation terminal for the payment flows.
func (s *Store) SubscriptionByUserID(userID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptionByUserLocked(userID)
}

func (s *Store) subscriptionByUserLocked(userID string) (*models.Subscription, error) {
	const op = "store.SubscriptionByUserID"

	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range subs {
		if subs[i].UserID == userID && subs[i].Status != models.SubscriptionStatusCancelado {
			return &subs[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNoSubscription)
}

// UpdateSubscription merges the non-nil fields and refreshes updated_at.
func (s *Store) UpdateSubscription(id string, update models.SubscriptionUpdate) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSubscriptionLocked(id, update)
}

func (s *Store) updateSubscriptionLocked(id string, update models.SubscriptionUpdate) (*models.Subscription, error) {
	const op = "store.UpdateSubscription"

	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i := range subs {
		if subs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	sub := &subs[idx]
	if update.PlanoID != nil {
		sub.PlanoID = *update.PlanoID
	}
	if update.PlanoNome != nil {
		sub.PlanoNome = *update.PlanoNome
	}
	if update.Valor != nil {
		sub.Valor = *update.Valor
	}
	if update.Status != nil {
		sub.Status = *update.Status
	}
	if update.TrialEndsAt != nil {
		sub.TrialEndsAt = *update.TrialEndsAt
	}
	if update.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = *update.CurrentPeriodStart
	}
	if update.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = *update.CurrentPeriodEnd
	}
	if update.CancelledAt != nil {
		sub.CancelledAt = update.CancelledAt
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := save(s, keySubscriptions, subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := subs[idx]
	return &out, nil
}

// CancelSubscription marks the user's live subscription cancelado and
// moves the user to status cancelado with no plan. A user without a live
// subscription is a no-op, matching the original behaviour.
func (s *Store) CancelSubscription(userID string) error {
	const op = "store.CancelSubscription"

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.subscriptionByUserLocked(userID)
	if err != nil {
		if errors.Is(err, models.ErrNoSubscription) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	status := models.SubscriptionStatusCancelado
	if _, err := s.updateSubscriptionLocked(sub.ID, models.SubscriptionUpdate{
		Status:      &status,
		CancelledAt: &now,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	userStatus := models.UserStatusCancelado
	emptyPlan := ""
	if _, err := s.updateUserLocked(userID, models.UserUpdate{Status: &userStatus, PlanoID: &emptyPlan}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("subscription_cancelled", userID, nil)
	return nil
}

// Subscriptions returns every subscription, cancelled ones included.
func (s *Store) Subscriptions() ([]models.Subscription, error) {
	const op = "store.Subscriptions"

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

func (s *Store) deleteSubscriptionsByUserLocked(userID string) error {
	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return err
	}
	kept := subs[:0]
	for _, sub := range subs {
		if sub.UserID != userID {
			kept = append(kept, sub)
		}
	}
	return save(s, keySubscriptions, kept)
}
