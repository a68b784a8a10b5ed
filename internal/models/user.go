// Package models contains the domain records of the storefront platform:
// users, subscriptions, vitrines, products, payments, audit logs and the
// outgoing email queue. The structs are used by the business layer and the
// record store; JSON tags match the persisted key-value layout.
package models

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User account statuses.
const (
	UserStatusPendente     = "pendente"
	UserStatusAtivo        = "ativo"
	UserStatusBloqueado    = "bloqueado"
	UserStatusInadimplente = "inadimplente"
	UserStatusCancelado    = "cancelado"
)

// User represents a registered seller account. Email is unique and stored
// lower-cased. PlanoID is empty while no plan has been picked.
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	SenhaHash         string     `json:"senha_hash"`
	Nome              string     `json:"nome"`
	Telefone          string     `json:"telefone"`
	Role              string     `json:"role"`
	Status            string     `json:"status"`
	PlanoID           string     `json:"plano,omitempty"`
	ResetToken        string     `json:"reset_token,omitempty"`
	ResetTokenExpires *time.Time `json:"reset_token_expires,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to the presentation layer:
// credential material and reset-token fields are stripped.
func (u User) Sanitized() User {
	u.SenhaHash = ""
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	return u
}

// UserUpdate carries a partial update for a user record. Nil fields are
// left untouched by the store.
type UserUpdate struct {
	Nome              *string
	Telefone          *string
	Status            *string
	PlanoID           *string
	SenhaHash         *string
	ResetToken        *string
	ResetTokenExpires *time.Time
}
