package vitrineapp

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	adminhandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/admin"
	authhandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/auth"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/health"
	motoshandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/motos"
	pagamentohandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/pagamento"
	userhandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/user"
	vitrinehandlers "github.com/isdev18/vitrine-do-vendedor/internal/api/handlers/vitrine"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/metrics"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/middlewarectx"
	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	authservice "github.com/isdev18/vitrine-do-vendedor/internal/services/auth"
	paymentservice "github.com/isdev18/vitrine-do-vendedor/internal/services/payment"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

// RegisterRoutes mounts every endpoint of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, repo *store.Store, authService *authservice.Service, paymentService *paymentservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	limiter := rate.NewLimiter(rate.Limit(50), 100)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints.
		r.Get("/health", health.New())
		r.Get("/planos", pagamentohandlers.NewPlanos(logger))
		r.Get("/v/{slug}", vitrinehandlers.NewPublic(logger, repo))
		r.Post("/auth/register", authhandlers.NewRegister(logger, authService))
		r.Post("/auth/login", authhandlers.NewLogin(logger, authService))
		r.Post("/auth/logout", authhandlers.NewLogout(logger, authService))
		r.Post("/auth/forgot-password", authhandlers.NewForgotPassword(logger, authService))
		r.Post("/auth/reset-password", authhandlers.NewResetPassword(logger, authService))
		r.Post("/pagamento/webhook", pagamentohandlers.NewWebhook(logger, paymentService, cfg.WebhookSecret))

		// Authenticated area.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Get("/user/profile", userhandlers.NewGetProfile(logger))
			r.Put("/user/profile", userhandlers.NewUpdateProfile(logger, repo))
			r.Put("/user/password", authhandlers.NewChangePassword(logger, authService))

			r.Post("/pagamento/subscribe", pagamentohandlers.NewSubscribe(logger, paymentService))
			r.Post("/pagamento/renew", pagamentohandlers.NewRenew(logger, paymentService))
			r.Post("/pagamento/change-plan", pagamentohandlers.NewChangePlan(logger, paymentService))
			r.Post("/pagamento/cancel", pagamentohandlers.NewCancel(logger, paymentService))
			r.Get("/pagamento/status", pagamentohandlers.NewStatus(logger, paymentService))
			r.Get("/pagamento/history", pagamentohandlers.NewHistory(logger, paymentService))

			// Subscriber-only area.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionMiddleware(repo, logger))

				r.Get("/vitrine", vitrinehandlers.NewGet(logger, repo))
				r.Put("/vitrine", vitrinehandlers.NewUpdate(logger, repo))
				r.Post("/vitrine/publish", vitrinehandlers.NewPublish(logger, repo))

				r.Post("/motos", motoshandlers.NewCreate(logger, repo))
				r.Get("/motos", motoshandlers.NewList(logger, repo))
				r.Put("/motos/{id}", motoshandlers.NewUpdate(logger, repo))
				r.Delete("/motos/{id}", motoshandlers.NewDelete(logger, repo))
			})

			// Admin area.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))

				r.Get("/admin/stats", adminhandlers.NewStats(logger, repo))
				r.Get("/admin/users", adminhandlers.NewUsers(logger, repo))
				r.Put("/admin/users/{id}/status", adminhandlers.NewSetUserStatus(logger, repo))
				r.Delete("/admin/users/{id}", adminhandlers.NewDeleteUser(logger, repo))
				r.Get("/admin/logs", adminhandlers.NewLogs(logger, repo))
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
