// Package gateway defines the payment-gateway boundary. The production
// integration would talk to a real acquirer; the platform ships with a
// simulated processor so the subscription flows can run locally and tests
// can inject deterministic outcomes.
package gateway

import "context"

// Charge outcomes, in the gateway's wire vocabulary.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ChargeRequest describes a single charge attempt.
type ChargeRequest struct {
	Amount        float64
	Currency      string
	CustomerEmail string
	Description   string
	Metodo        string
}

// ChargeResult is the gateway's answer. Reason is filled on rejection.
type ChargeResult struct {
	ID           string
	Status       string
	StatusDetail string
	Reason       string
}

// Approved reports whether the charge went through.
func (r *ChargeResult) Approved() bool {
	return r.Status == StatusApproved
}

// Gateway processes charges. Implementations must be safe for use from a
// single caller at a time; the payment service serializes access.
type Gateway interface {
	Process(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
