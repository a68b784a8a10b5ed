package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
)

// LogoutService ends the current session.
type LogoutService interface {
	Logout() error
}

// NewLogout builds the POST /auth/logout handler.
func NewLogout(log *slog.Logger, service LogoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := service.Logout(); err != nil {
			log.Error("logout failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OK())
	}
}
