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
	authservice "github.com/isdev18/vitrine-do-vendedor/internal/services/auth"
)

// LoginRequest carries the login form.
type LoginRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Senha   string `json:"senha" validate:"required"`
	Lembrar bool   `json:"lembrar"`
}

// LoginService authenticates credentials into a session.
type LoginService interface {
	Login(email, senha string, lembrar bool) (*models.Session, error)
}

// NewLogin builds the POST /auth/login handler.
func NewLogin(log *slog.Logger, service LoginService) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req LoginRequest
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

		sess, err := service.Login(req.Email, req.Senha, req.Lembrar)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			switch {
			case errors.Is(err, authservice.ErrTooManyAttempts):
				log.Error("login rate limited")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(authservice.ErrTooManyAttempts.Error()))
			case errors.Is(err, models.ErrAccountBlocked):
				log.Error("blocked account login attempt")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrAccountBlocked.Error()))
			default:
				log.Error("login failed", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(models.ErrInvalidCredentials.Error()))
			}
			return
		}

		metrics.LoginsTotal.WithLabelValues("success").Inc()
		log.Info("user logged in", slog.String("user_id", sess.UserID))
		render.JSON(w, r, response.OKWithData(map[string]any{
			"token":      sess.Token,
			"expires_at": sess.ExpiresAt,
			"user":       sess.User,
		}))
	}
}
