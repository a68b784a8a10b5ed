// Package motos contains the HTTP handlers of the product endpoints. A
// seller manages only their own listings; plan limits apply on creation.
package motos

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/middlewarectx"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

// Repository is the slice of the record store the product handlers use.
type Repository interface {
	CreateProduto(userID string, params store.CreateProdutoParams) (*models.Produto, error)
	ProdutosByUserID(userID string) ([]models.Produto, error)
	ProdutoByID(id string) (*models.Produto, error)
	UpdateProduto(id string, update models.ProdutoUpdate) (*models.Produto, error)
	DeleteProduto(id string) error
}

// CreateRequest carries a new product listing.
type CreateRequest struct {
	Nome      string   `json:"nome" validate:"required,min=2,max=100"`
	Descricao string   `json:"descricao" validate:"omitempty,max=1000"`
	Preco     float64  `json:"preco" validate:"required,gt=0"`
	Ano       string   `json:"ano" validate:"omitempty,len=4,numeric"`
	Categoria string   `json:"categoria" validate:"omitempty,max=50"`
	Imagens   []string `json:"imagens" validate:"omitempty,max=5"`
	Destaque  bool     `json:"destaque"`
}

// NewCreate builds the POST /motos handler.
func NewCreate(log *slog.Logger, repo Repository) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.motos.create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req CreateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		produto, err := repo.CreateProduto(user.ID, store.CreateProdutoParams{
			Nome:      req.Nome,
			Descricao: req.Descricao,
			Preco:     req.Preco,
			Ano:       req.Ano,
			Categoria: req.Categoria,
			Imagens:   req.Imagens,
			Destaque:  req.Destaque,
		})
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.Is(err, models.ErrPlanLimitExceeded):
				log.Info("plan limit reached", slog.String("user_id", user.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrPlanLimitExceeded.Error()))
			case errors.As(err, &verr):
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(verr.Message))
			default:
				log.Error("produto creation failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}

		log.Info("produto created", slog.String("produto_id", produto.ID))
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response.OKWithData(produto))
	}
}

// NewList builds the GET /motos handler, returning the seller's listings
// in display order.
func NewList(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.motos.list"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		produtos, err := repo.ProdutosByUserID(user.ID)
		if err != nil {
			log.Error("produto listing failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OKWithData(produtos))
	}
}

// UpdateRequest carries the editable product fields.
type UpdateRequest struct {
	Nome      *string   `json:"nome,omitempty" validate:"omitempty,min=2,max=100"`
	Descricao *string   `json:"descricao,omitempty" validate:"omitempty,max=1000"`
	Preco     *float64  `json:"preco,omitempty" validate:"omitempty,gt=0"`
	Ano       *string   `json:"ano,omitempty" validate:"omitempty,len=4,numeric"`
	Categoria *string   `json:"categoria,omitempty" validate:"omitempty,max=50"`
	Imagens   *[]string `json:"imagens,omitempty" validate:"omitempty,max=5"`
	Destaque  *bool     `json:"destaque,omitempty"`
	Ativo     *bool     `json:"ativo,omitempty"`
	Ordem     *int      `json:"ordem,omitempty" validate:"omitempty,min=0"`
}

// NewUpdate builds the PUT /motos/{id} handler.
func NewUpdate(log *slog.Logger, repo Repository) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.motos.update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		id := chi.URLParam(r, "id")

		owned, err := ownedProduto(repo, id, user)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("moto não encontrada"))
			return
		}

		var req UpdateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		produto, err := repo.UpdateProduto(owned.ID, models.ProdutoUpdate{
			Nome:      req.Nome,
			Descricao: req.Descricao,
			Preco:     req.Preco,
			Ano:       req.Ano,
			Categoria: req.Categoria,
			Imagens:   req.Imagens,
			Destaque:  req.Destaque,
			Ativo:     req.Ativo,
			Ordem:     req.Ordem,
		})
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(verr.Message))
				return
			}
			log.Error("produto update failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("produto updated", slog.String("produto_id", produto.ID))
		render.JSON(w, r, response.OKWithData(produto))
	}
}

// NewDelete builds the DELETE /motos/{id} handler.
func NewDelete(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.motos.delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		id := chi.URLParam(r, "id")

		owned, err := ownedProduto(repo, id, user)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("moto não encontrada"))
			return
		}

		if err := repo.DeleteProduto(owned.ID); err != nil {
			log.Error("produto delete failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("produto deleted", slog.String("produto_id", owned.ID))
		render.JSON(w, r, response.OK())
	}
}

// ownedProduto resolves the product and enforces ownership. Admins may
// touch any listing.
func ownedProduto(repo Repository, id string, user *models.User) (*models.Produto, error) {
	produto, err := repo.ProdutoByID(id)
	if err != nil {
		return nil, err
	}
	if produto.UserID != user.ID && user.Role != models.RoleAdmin {
		return nil, models.ErrNotFound
	}
	return produto, nil
}
