package models

import "time"

// Payment statuses.
const (
	PagamentoStatusPendente = "pendente"
	PagamentoStatusAprovado = "aprovado"
	PagamentoStatusRecusado = "recusado"
	PagamentoStatusEstorno  = "estornado"
)

// Payment methods.
const (
	MetodoCartao = "cartao"
	MetodoBoleto = "boleto"
	MetodoPix    = "pix"
)

// Pagamento is a single charge attempt against a subscription. GatewayID
// is the reference handed back by the payment gateway.
type Pagamento struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SubscriptionID string    `json:"subscription_id"`
	Valor          float64   `json:"valor"`
	Metodo         string    `json:"metodo"`
	Status         string    `json:"status"`
	GatewayID      string    `json:"gateway_id,omitempty"`
	GatewayDetail  string    `json:"gateway_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
