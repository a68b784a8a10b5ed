package models

import "time"

// MaxProdutoImagens bounds the image list of a single product.
const MaxProdutoImagens = 5

// Produto is a motorcycle listed on a vitrine. Ordem is the explicit
// display position; Destaque floats the product above non-featured ones.
type Produto struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	VitrineID     string    `json:"vitrine_id"`
	Nome          string    `json:"nome"`
	Descricao     string    `json:"descricao"`
	Preco         float64   `json:"preco"`
	Ano           string    `json:"ano"`
	Categoria     string    `json:"categoria"`
	Imagens       []string  `json:"imagens"`
	Destaque      bool      `json:"destaque"`
	Ativo         bool      `json:"ativo"`
	Ordem         int       `json:"ordem"`
	Visualizacoes int       `json:"visualizacoes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProdutoUpdate carries a partial update for a product record.
type ProdutoUpdate struct {
	Nome      *string
	Descricao *string
	Preco     *float64
	Ano       *string
	Categoria *string
	Imagens   *[]string
	Destaque  *bool
	Ativo     *bool
	Ordem     *int
}
