package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// CreatePagamentoParams carries the fields for a new payment record.
// Status defaults to pendente and Metodo to cartao when empty.
type CreatePagamentoParams struct {
	SubscriptionID string
	Valor          float64
	Metodo         string
	Status         string
	GatewayID      string
	GatewayDetail  string
}

// CreatePagamento inserts a payment record for the user.
func (s *Store) CreatePagamento(userID string, params CreatePagamentoParams) (*models.Pagamento, error) {
	const op = "store.CreatePagamento"

	s.mu.Lock()
	defer s.mu.Unlock()

	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if params.Metodo == "" {
		params.Metodo = models.MetodoCartao
	}
	if params.Status == "" {
		params.Status = models.PagamentoStatusPendente
	}

	now := time.Now().UTC()
	pagamento := models.Pagamento{
		ID:             newID(),
		UserID:         userID,
		SubscriptionID: params.SubscriptionID,
		Valor:          params.Valor,
		Metodo:         params.Metodo,
		Status:         params.Status,
		GatewayID:      params.GatewayID,
		GatewayDetail:  params.GatewayDetail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	pagamentos = append(pagamentos, pagamento)
	if err := save(s, keyPagamentos, pagamentos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &pagamento, nil
}

// SetPagamentoStatus moves a payment to a new status. A transition to
// aprovado reactivates the owning user's live subscription with a fresh
// billing period and logs pagamento_aprovado.
func (s *Store) SetPagamentoStatus(id, status string, period time.Duration) (*models.Pagamento, error) {
	const op = "store.SetPagamentoStatus"

	s.mu.Lock()
	defer s.mu.Unlock()

	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i := range pagamentos {
		if pagamentos[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	now := time.Now().UTC()
	pagamentos[idx].Status = status
	pagamentos[idx].UpdatedAt = now
	if err := save(s, keyPagamentos, pagamentos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pagamento := pagamentos[idx]
	if status == models.PagamentoStatusAprovado {
		if sub, err := s.subscriptionByUserLocked(pagamento.UserID); err == nil {
			active := models.SubscriptionStatusAtivo
			start := now
			end := now.Add(period)
			if _, err := s.updateSubscriptionLocked(sub.ID, models.SubscriptionUpdate{
				Status:             &active,
				CurrentPeriodStart: &start,
				CurrentPeriodEnd:   &end,
			}); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			userStatus := models.UserStatusAtivo
			if _, err := s.updateUserLocked(pagamento.UserID, models.UserUpdate{Status: &userStatus}); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		s.addLogLocked("pagamento_aprovado", pagamento.UserID,
			map[string]string{"valor": fmt.Sprintf("%.2f", pagamento.Valor)})
	}
	return &pagamento, nil
}

// PagamentoByGatewayID returns the payment that carries the gateway
// reference, or models.ErrNotFound. Used by the webhook appliers.
func (s *Store) PagamentoByGatewayID(gatewayID string) (*models.Pagamento, error) {
	const op = "store.PagamentoByGatewayID"

	s.mu.Lock()
	defer s.mu.Unlock()

	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range pagamentos {
		if pagamentos[i].GatewayID == gatewayID && gatewayID != "" {
			return &pagamentos[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// PagamentosByUserID lists the user's payments, newest first.
func (s *Store) PagamentosByUserID(userID string) ([]models.Pagamento, error) {
	const op = "store.PagamentosByUserID"

	s.mu.Lock()
	defer s.mu.Unlock()

	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []models.Pagamento
	for _, p := range pagamentos {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Pagamentos returns every payment record.
func (s *Store) Pagamentos() ([]models.Pagamento, error) {
	const op = "store.Pagamentos"

	s.mu.Lock()
	defer s.mu.Unlock()

	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pagamentos, nil
}
