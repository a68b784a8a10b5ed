package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the store and the services. Callers match
// them with errors.Is; the presentation layer owns the user-facing text.
var (
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("email ou senha incorretos")
	ErrAccountBlocked     = errors.New("conta bloqueada")
	ErrInvalidToken       = errors.New("token invalido ou expirado")
	ErrInvalidPlan        = errors.New("plano invalido")
	ErrPlanLimitExceeded  = errors.New("limite de motos do plano atingido")
	ErrPaymentDeclined    = errors.New("pagamento nao aprovado")
	ErrNoSubscription     = errors.New("assinatura nao encontrada")
)

// ValidationError names the input rule that was violated.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// NewValidationError builds a ValidationError for the given rule.
func NewValidationError(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}
