package models

import "time"

// Email template identifiers used by the queue.
const (
	EmailBoasVindas           = "welcome"
	EmailRecuperacaoSenha     = "password_reset"
	EmailConfirmacaoPagamento = "payment_confirmed"
	EmailLembreteVencimento   = "payment_reminder"
	EmailPagamentoAtrasado    = "payment_overdue"
	EmailVitrineBloqueada     = "vitrine_blocked"
	EmailVitrineReativada     = "vitrine_reactivated"
	EmailCancelamento         = "subscription_cancelled"
)

// Queued email statuses.
const (
	EmailStatusPendente = "pendente"
	EmailStatusEnviado  = "enviado"
)

// QueuedEmail is a pending notification. The queue lives in the record
// store; a processor drains it and flips the status to enviado.
type QueuedEmail struct {
	ID        string            `json:"id"`
	Tipo      string            `json:"tipo"`
	UserID    string            `json:"user_id"`
	EmailTo   string            `json:"email_to"`
	Data      map[string]string `json:"data,omitempty"`
	Status    string            `json:"status"`
	Attempts  int               `json:"attempts"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
