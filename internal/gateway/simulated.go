package gateway

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Canned decline returned by the simulator.
const (
	declineDetail = "cc_rejected_insufficient_amount"
	declineReason = "Pagamento recusado pela operadora"
	approveDetail = "accredited"
)

// Simulated approves charges with a fixed probability after an artificial
// processing delay. It stands in for a real acquirer integration.
type Simulated struct {
	delay       time.Duration
	successRate float64
	rand        *rand.Rand
}

// NewSimulated builds a simulator. successRate is the approval
// probability in [0,1]; delay models gateway latency.
func NewSimulated(delay time.Duration, successRate float64) *Simulated {
	return &Simulated{
		delay:       delay,
		successRate: successRate,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process waits out the artificial delay and draws the outcome.
func (g *Simulated) Process(ctx context.Context, _ ChargeRequest) (*ChargeResult, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	id := "pay_" + uuid.NewString()
	if g.rand.Float64() < g.successRate {
		return &ChargeResult{
			ID:           id,
			Status:       StatusApproved,
			StatusDetail: approveDetail,
		}, nil
	}
	return &ChargeResult{
		ID:           id,
		Status:       StatusRejected,
		StatusDetail: declineDetail,
		Reason:       declineReason,
	}, nil
}
