package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// SubscriptionChecker reports the live subscription of a user.
type SubscriptionChecker interface {
	SubscriptionByUserID(userID string) (*models.Subscription, error)
}

// SubscriptionMiddleware gates the subscriber-only endpoints: the context
// user needs a trial or active subscription. Admins pass unconditionally.
// It must run after JWTMiddleware.
func SubscriptionMiddleware(checker SubscriptionChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SubscriptionMiddleware"

			user := UserFromContext(r.Context())
			if user == nil {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			if user.Role == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			sub, err := checker.SubscriptionByUserID(user.ID)
			if err != nil || (sub.Status != models.SubscriptionStatusTrial && sub.Status != models.SubscriptionStatusAtivo) {
				log.Info("subscription required",
					slog.String("op", op), slog.String("user_id", user.ID))
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("assinatura ativa necessária"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
