package models

import "time"

// Subscription statuses. Cancelado is terminal.
const (
	SubscriptionStatusTrial        = "trial"
	SubscriptionStatusAtivo        = "ativo"
	SubscriptionStatusInadimplente = "inadimplente"
	SubscriptionStatusCancelado    = "cancelado"
	SubscriptionStatusBloqueado    = "bloqueado"
)

// Subscription ties a user to a plan. PlanoNome and Valor are snapshots of
// the plan at subscription time so later catalog edits do not rewrite
// billing history. At most one non-cancelled subscription exists per user.
type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	PlanoID            string     `json:"plano_id"`
	PlanoNome          string     `json:"plano_nome"`
	Valor              float64    `json:"valor"`
	Status             string     `json:"status"`
	TrialEndsAt        time.Time  `json:"trial_ends_at"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SubscriptionUpdate carries a partial update for a subscription record.
type SubscriptionUpdate struct {
	PlanoID            *string
	PlanoNome          *string
	Valor              *float64
	Status             *string
	TrialEndsAt        *time.Time
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelledAt        *time.Time
}
