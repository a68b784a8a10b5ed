package store

import (
	"fmt"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// Stats aggregates the dashboard counters: user and vitrine totals,
// approved revenue for the current month and overall, and live
// subscription counts per plan. Admin accounts are excluded.
func (s *Store) Stats() (*models.Stats, error) {
	const op = "store.Stats"

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[models.User](s, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := load[models.Subscription](s, keySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pagamentos, err := load[models.Pagamento](s, keyPagamentos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := &models.Stats{AssinaturasPorPlano: make(map[string]int, len(config.Planos))}
	for id := range config.Planos {
		stats.AssinaturasPorPlano[id] = 0
	}

	for _, u := range users {
		if u.Role == models.RoleAdmin {
			continue
		}
		stats.TotalUsuarios++
		switch u.Status {
		case models.UserStatusAtivo:
			stats.UsuariosAtivos++
		case models.UserStatusInadimplente:
			stats.UsuariosInadimplente++
		}
	}

	for _, sub := range subs {
		if sub.Status == models.SubscriptionStatusTrial {
			stats.UsuariosTrial++
		}
		if sub.Status != models.SubscriptionStatusCancelado {
			stats.AssinaturasPorPlano[sub.PlanoID]++
		}
	}

	for _, v := range vitrines {
		stats.TotalVitrines++
		if v.Publicada {
			stats.VitrinesPublicadas++
		}
	}

	now := time.Now().UTC()
	inicioMes := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, p := range pagamentos {
		if p.Status != models.PagamentoStatusAprovado {
			continue
		}
		stats.ReceitaTotal += p.Valor
		if !p.CreatedAt.Before(inicioMes) {
			stats.ReceitaMensal += p.Valor
		}
	}

	return stats, nil
}
