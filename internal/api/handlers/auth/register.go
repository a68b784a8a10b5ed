// Package auth contains the HTTP handlers of the account endpoints:
// registration, login, logout and the password flows.
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/metrics"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Senha          string `json:"senha" validate:"required,min=6"`
	ConfirmarSenha string `json:"confirmar_senha" validate:"required"`
}

// Registerer creates accounts.
type Registerer interface {
	Register(email, senha, confirmarSenha string) (*models.User, error)
}

// NewRegister builds the POST /auth/register handler.
func NewRegister(log *slog.Logger, service Registerer) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.register"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req RegisterRequest
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

		user, err := service.Register(req.Email, req.Senha, req.ConfirmarSenha)
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				log.Error("registration rejected", sl.Err(err))
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(verr.Message))
			case errors.Is(err, models.ErrDuplicateKey):
				log.Error("email already registered")
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, response.Error("email já cadastrado"))
			default:
				log.Error("registration failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}

		metrics.RegistrationsTotal.Inc()
		log.Info("user registered", slog.String("user_id", user.ID))
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response.OKWithData(user.Sanitized()))
	}
}
