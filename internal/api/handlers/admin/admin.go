// Package admin contains the HTTP handlers of the administration area:
// platform stats, the user list, account moderation and the audit log.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// Repository is the slice of the record store the admin handlers use.
type Repository interface {
	Stats() (*models.Stats, error)
	Users() ([]models.User, error)
	UpdateUser(id string, update models.UserUpdate) (*models.User, error)
	DeleteUser(id string) error
	Logs(filter models.LogFilter) ([]models.LogEntry, error)
}

// NewStats builds the GET /admin/stats handler.
func NewStats(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.stats"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := repo.Stats()
		if err != nil {
			log.Error("stats aggregation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OKWithData(stats))
	}
}

// NewUsers builds the GET /admin/users handler. Password hashes and
// reset tokens never leave the server.
func NewUsers(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.users"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		users, err := repo.Users()
		if err != nil {
			log.Error("user listing failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		sanitized := make([]models.User, 0, len(users))
		for _, u := range users {
			sanitized = append(sanitized, u.Sanitized())
		}
		render.JSON(w, r, response.OKWithData(sanitized))
	}
}

// SetStatusRequest carries a moderation action on a user account.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pendente ativo bloqueado inadimplente cancelado"`
}

// NewSetUserStatus builds the PUT /admin/users/{id}/status handler, used
// to block and unblock accounts.
func NewSetUserStatus(log *slog.Logger, repo Repository) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.setuserstatus"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req SetStatusRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		user, err := repo.UpdateUser(id, models.UserUpdate{Status: &req.Status})
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("usuário não encontrado"))
				return
			}
			log.Error("status update failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("user status changed",
			slog.String("user_id", id), slog.String("status", req.Status))
		render.JSON(w, r, response.OKWithData(user.Sanitized()))
	}
}

// NewDeleteUser builds the DELETE /admin/users/{id} handler. The user's
// vitrine, products and subscriptions go with the account; audit logs
// stay.
func NewDeleteUser(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.deleteuser"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if err := repo.DeleteUser(id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("usuário não encontrado"))
				return
			}
			log.Error("user delete failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("user deleted", slog.String("user_id", id))
		render.JSON(w, r, response.OK())
	}
}

// NewLogs builds the GET /admin/logs handler. Query parameters action
// and user_id narrow the result.
func NewLogs(log *slog.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.logs"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		entries, err := repo.Logs(models.LogFilter{
			Action: r.URL.Query().Get("action"),
			UserID: r.URL.Query().Get("user_id"),
		})
		if err != nil {
			log.Error("log query failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OKWithData(entries))
	}
}
