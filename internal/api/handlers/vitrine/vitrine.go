// Package vitrine contains the HTTP handlers of the storefront
// endpoints: the owner's vitrine management and the public page by slug.
package vitrine

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
)

// Repository is the slice of the record store the vitrine handlers use.
type Repository interface {
	VitrineByUserID(userID string) (*models.Vitrine, error)
	VitrineBySlug(slug string) (*models.Vitrine, error)
	UpdateVitrine(userID string, update models.VitrineUpdate) (*models.Vitrine, error)
	PublishVitrine(userID string) (*models.Vitrine, error)
	IncrementVitrineViews(vitrineID string) error
	ProdutosByVitrineID(vitrineID string) ([]models.Produto, error)
}

// NewGet builds the GET /vitrine handler, returning the owner's vitrine.
func NewGet(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.vitrine.get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		vitrine, err := repo.VitrineByUserID(user.ID)
		if err != nil {
			log.Error("vitrine lookup failed", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("vitrine não encontrada"))
			return
		}
		render.JSON(w, r, response.OKWithData(vitrine))
	}
}

// UpdateRequest carries the editable vitrine fields.
type UpdateRequest struct {
	Nome             *string `json:"nome,omitempty" validate:"omitempty,min=2,max=100"`
	Slogan           *string `json:"slogan,omitempty" validate:"omitempty,max=150"`
	Descricao        *string `json:"descricao,omitempty" validate:"omitempty,max=1000"`
	URLPersonalizada *string `json:"url_personalizada,omitempty" validate:"omitempty,min=3,max=50"`
	FotoPerfil       *string `json:"foto_perfil,omitempty"`
	Banner           *string `json:"banner,omitempty"`
	CorTema          *string `json:"cor_tema,omitempty" validate:"omitempty,hexcolor"`
	Whatsapp         *string `json:"whatsapp,omitempty" validate:"omitempty,max=20"`
	Instagram        *string `json:"instagram,omitempty" validate:"omitempty,max=100"`
	Facebook         *string `json:"facebook,omitempty" validate:"omitempty,max=100"`
	EmailContato     *string `json:"email_contato,omitempty" validate:"omitempty,email"`
	Endereco         *string `json:"endereco,omitempty" validate:"omitempty,max=200"`
}

// NewUpdate builds the PUT /vitrine handler.
func NewUpdate(log *slog.Logger, repo Repository) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.vitrine.update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

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

		vitrine, err := repo.UpdateVitrine(user.ID, models.VitrineUpdate{
			Nome:             req.Nome,
			Slogan:           req.Slogan,
			Descricao:        req.Descricao,
			URLPersonalizada: req.URLPersonalizada,
			FotoPerfil:       req.FotoPerfil,
			Banner:           req.Banner,
			CorTema:          req.CorTema,
			Whatsapp:         req.Whatsapp,
			Instagram:        req.Instagram,
			Facebook:         req.Facebook,
			EmailContato:     req.EmailContato,
			Endereco:         req.Endereco,
		})
		if err != nil {
			if errors.Is(err, models.ErrDuplicateKey) {
				log.Error("slug already taken")
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, response.Error("url personalizada já está em uso"))
				return
			}
			log.Error("vitrine update failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("vitrine updated", slog.String("user_id", user.ID))
		render.JSON(w, r, response.OKWithData(vitrine))
	}
}

// NewPublish builds the POST /vitrine/publish handler.
func NewPublish(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.vitrine.publish"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		vitrine, err := repo.PublishVitrine(user.ID)
		if err != nil {
			log.Error("vitrine publish failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("vitrine published", slog.String("user_id", user.ID))
		render.JSON(w, r, response.OKWithData(vitrine))
	}
}

// NewPublic builds the GET /v/{slug} handler: the published storefront
// with its active products. Each hit counts one view.
func NewPublic(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.vitrine.public"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		slug := chi.URLParam(r, "slug")
		vitrine, err := repo.VitrineBySlug(slug)
		if err != nil {
			log.Info("vitrine not found", slog.String("slug", slug))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("vitrine não encontrada"))
			return
		}

		if err := repo.IncrementVitrineViews(vitrine.ID); err != nil {
			log.Warn("failed to count view", sl.Err(err))
		}

		produtos, err := repo.ProdutosByVitrineID(vitrine.ID)
		if err != nil {
			log.Error("failed to load produtos", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		ativos := make([]models.Produto, 0, len(produtos))
		for _, p := range produtos {
			if p.Ativo {
				ativos = append(ativos, p)
			}
		}

		render.JSON(w, r, response.OKWithData(map[string]any{
			"vitrine":  vitrine,
			"produtos": ativos,
		}))
	}
}
