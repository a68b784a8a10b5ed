package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// CreateProdutoParams carries the fields for a new product listing.
type CreateProdutoParams struct {
	Nome      string
	Descricao string
	Preco     float64
	Ano       string
	Categoria string
	Imagens   []string
	Destaque  bool
}

// CreateProduto inserts a listing on the user's vitrine. The user's plan
// bounds how many products may exist (models.ErrPlanLimitExceeded beyond
// the quota; -1 means unlimited) and the image list is capped.
func (s *Store) CreateProduto(userID string, params CreateProdutoParams) (*models.Produto, error) {
	const op = "store.CreateProduto"

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(params.Imagens) > models.MaxProdutoImagens {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("imagens",
			fmt.Sprintf("no máximo %d imagens por produto", models.MaxProdutoImagens)))
	}

	vitrine, err := s.vitrineByUserLocked(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count := 0
	for _, p := range produtos {
		if p.UserID == userID {
			count++
		}
	}

	user, err := s.userByIDLocked(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plano, ok := config.PlanoByID(user.PlanoID); ok {
		if plano.LimiteMotos != -1 && count >= plano.LimiteMotos {
			return nil, fmt.Errorf("%s: limite de %d motos: %w", op, plano.LimiteMotos, models.ErrPlanLimitExceeded)
		}
	}

	now := time.Now().UTC()
	produto := models.Produto{
		ID:        newID(),
		UserID:    userID,
		VitrineID: vitrine.ID,
		Nome:      params.Nome,
		Descricao: params.Descricao,
		Preco:     params.Preco,
		Ano:       params.Ano,
		Categoria: params.Categoria,
		Imagens:   params.Imagens,
		Destaque:  params.Destaque,
		Ativo:     true,
		Ordem:     count,
		CreatedAt: now,
		UpdatedAt: now,
	}
	produtos = append(produtos, produto)
	if err := save(s, keyProdutos, produtos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("produto_created", userID, map[string]string{"nome": produto.Nome})
	return &produto, nil
}

// ProdutosByUserID lists the user's products, featured first, then by
// display order.
func (s *Store) ProdutosByUserID(userID string) ([]models.Produto, error) {
	const op = "store.ProdutosByUserID"

	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []models.Produto
	for _, p := range produtos {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sortProdutos(result)
	return result, nil
}

// ProdutosByVitrineID lists the active products of a storefront, featured
// first, then by display order. Inactive listings are hidden from the
// public page.
func (s *Store) ProdutosByVitrineID(vitrineID string) ([]models.Produto, error) {
	const op = "store.ProdutosByVitrineID"

	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []models.Produto
	for _, p := range produtos {
		if p.VitrineID == vitrineID && p.Ativo {
			result = append(result, p)
		}
	}
	sortProdutos(result)
	return result, nil
}

func sortProdutos(produtos []models.Produto) {
	sort.SliceStable(produtos, func(i, j int) bool {
		if produtos[i].Destaque != produtos[j].Destaque {
			return produtos[i].Destaque
		}
		return produtos[i].Ordem < produtos[j].Ordem
	})
}

// ProdutoByID returns the product or models.ErrNotFound.
func (s *Store) ProdutoByID(id string) (*models.Produto, error) {
	const op = "store.ProdutoByID"

	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range produtos {
		if produtos[i].ID == id {
			return &produtos[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// UpdateProduto merges the non-nil fields and refreshes updated_at.
func (s *Store) UpdateProduto(id string, update models.ProdutoUpdate) (*models.Produto, error) {
	const op = "store.UpdateProduto"

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Imagens != nil && len(*update.Imagens) > models.MaxProdutoImagens {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("imagens",
			fmt.Sprintf("no máximo %d imagens por produto", models.MaxProdutoImagens)))
	}

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i := range produtos {
		if produtos[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	p := &produtos[idx]
	if update.Nome != nil {
		p.Nome = *update.Nome
	}
	if update.Descricao != nil {
		p.Descricao = *update.Descricao
	}
	if update.Preco != nil {
		p.Preco = *update.Preco
	}
	if update.Ano != nil {
		p.Ano = *update.Ano
	}
	if update.Categoria != nil {
		p.Categoria = *update.Categoria
	}
	if update.Imagens != nil {
		p.Imagens = *update.Imagens
	}
	if update.Destaque != nil {
		p.Destaque = *update.Destaque
	}
	if update.Ativo != nil {
		p.Ativo = *update.Ativo
	}
	if update.Ordem != nil {
		p.Ordem = *update.Ordem
	}
	p.UpdatedAt = time.Now().UTC()

	if err := save(s, keyProdutos, produtos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := produtos[idx]
	return &out, nil
}

// IncrementProdutoViews bumps the view counter of a listing.
func (s *Store) IncrementProdutoViews(id string) error {
	const op = "store.IncrementProdutoViews"

	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range produtos {
		if produtos[i].ID == id {
			produtos[i].Visualizacoes++
			if err := save(s, keyProdutos, produtos); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return nil
}

// DeleteProduto removes the listing and logs produto_deleted.
func (s *Store) DeleteProduto(id string) error {
	const op = "store.DeleteProduto"

	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	kept := produtos[:0]
	for _, p := range produtos {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := save(s, keyProdutos, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("produto_deleted", "", map[string]string{"id": id})
	return nil
}

func (s *Store) deleteProdutosByUserLocked(userID string) error {
	produtos, err := load[models.Produto](s, keyProdutos)
	if err != nil {
		return err
	}
	kept := produtos[:0]
	for _, p := range produtos {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	return save(s, keyProdutos, kept)
}
