package models

import "time"

// DefaultVitrineCorTema is the theme color a fresh vitrine starts with.
const DefaultVitrineCorTema = "#e31837"

// Vitrine is the public storefront page of a seller, one per user. The
// personalized URL slug is globally unique among published vitrines.
type Vitrine struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Nome             string    `json:"nome"`
	Slogan           string    `json:"slogan"`
	Descricao        string    `json:"descricao"`
	URLPersonalizada string    `json:"url_personalizada"`
	FotoPerfil       string    `json:"foto_perfil"`
	Banner           string    `json:"banner"`
	CorTema          string    `json:"cor_tema"`
	Whatsapp         string    `json:"whatsapp"`
	Instagram        string    `json:"instagram"`
	Facebook         string    `json:"facebook"`
	EmailContato     string    `json:"email_contato"`
	Endereco         string    `json:"endereco"`
	Publicada        bool      `json:"publicada"`
	Visualizacoes    int       `json:"visualizacoes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VitrineUpdate carries a partial update for a vitrine record.
type VitrineUpdate struct {
	Nome             *string
	Slogan           *string
	Descricao        *string
	URLPersonalizada *string
	FotoPerfil       *string
	Banner           *string
	CorTema          *string
	Whatsapp         *string
	Instagram        *string
	Facebook         *string
	EmailContato     *string
	Endereco         *string
	Publicada        *bool
}
