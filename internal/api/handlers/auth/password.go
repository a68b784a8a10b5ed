package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/middlewarectx"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// ForgotPasswordRequest carries the recovery form.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotService starts a password recovery.
type ForgotService interface {
	ForgotPassword(email string) (string, error)
}

// NewForgotPassword builds the POST /auth/forgot-password handler. The
// response message is the same for known and unknown emails.
func NewForgotPassword(log *slog.Logger, service ForgotService) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.forgotpassword"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ForgotPasswordRequest
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

		msg, err := service.ForgotPassword(req.Email)
		if err != nil {
			log.Error("password recovery failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OKWithData(map[string]any{"message": msg}))
	}
}

// ResetPasswordRequest carries the reset form.
type ResetPasswordRequest struct {
	Token          string `json:"token" validate:"required"`
	NovaSenha      string `json:"nova_senha" validate:"required,min=6"`
	ConfirmarSenha string `json:"confirmar_senha" validate:"required"`
}

// ResetService consumes a reset token.
type ResetService interface {
	ResetPassword(token, novaSenha, confirmarSenha string) error
}

// NewResetPassword builds the POST /auth/reset-password handler.
func NewResetPassword(log *slog.Logger, service ResetService) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.resetpassword"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ResetPasswordRequest
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

		if err := service.ResetPassword(req.Token, req.NovaSenha, req.ConfirmarSenha); err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				log.Error("reset rejected", sl.Err(err))
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(verr.Message))
			case errors.Is(err, models.ErrInvalidToken):
				log.Error("invalid reset token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(models.ErrInvalidToken.Error()))
			default:
				log.Error("reset failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}
		render.JSON(w, r, response.OK())
	}
}

// ChangePasswordRequest carries the authenticated password change form.
type ChangePasswordRequest struct {
	SenhaAtual     string `json:"senha_atual" validate:"required"`
	NovaSenha      string `json:"nova_senha" validate:"required,min=6"`
	ConfirmarSenha string `json:"confirmar_senha" validate:"required"`
}

// ChangeService replaces the password of an authenticated user.
type ChangeService interface {
	ChangePasswordFor(userID, senhaAtual, novaSenha, confirmarSenha string) error
}

// NewChangePassword builds the PUT /user/password handler.
func NewChangePassword(log *slog.Logger, service ChangeService) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.changepassword"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req ChangePasswordRequest
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

		if err := service.ChangePasswordFor(user.ID, req.SenhaAtual, req.NovaSenha, req.ConfirmarSenha); err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(verr.Message))
			case errors.Is(err, models.ErrInvalidCredentials):
				log.Error("wrong current password")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("senha atual incorreta"))
			default:
				log.Error("password change failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}
		render.JSON(w, r, response.OK())
	}
}
