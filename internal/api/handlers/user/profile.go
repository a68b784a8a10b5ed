// Package user contains the HTTP handlers of the authenticated profile
// endpoints.
package user

import (
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

// NewGetProfile builds the GET /user/profile handler.
func NewGetProfile(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewarectx.UserFromContext(r.Context())
		render.JSON(w, r, response.OKWithData(user.Sanitized()))
	}
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Nome     *string `json:"nome,omitempty" validate:"omitempty,min=2,max=100"`
	Telefone *string `json:"telefone,omitempty" validate:"omitempty,max=20"`
}

// ProfileUpdater applies partial user updates.
type ProfileUpdater interface {
	UpdateUser(id string, update models.UserUpdate) (*models.User, error)
}

// NewUpdateProfile builds the PUT /user/profile handler.
func NewUpdateProfile(log *slog.Logger, repo ProfileUpdater) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.updateprofile"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req UpdateProfileRequest
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

		updated, err := repo.UpdateUser(user.ID, models.UserUpdate{
			Nome:     req.Nome,
			Telefone: req.Telefone,
		})
		if err != nil {
			log.Error("profile update failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("profile updated", slog.String("user_id", user.ID))
		render.JSON(w, r, response.OKWithData(updated.Sanitized()))
	}
}
