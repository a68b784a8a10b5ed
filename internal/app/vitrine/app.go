// Package vitrineapp wires the application together: storage, services,
// router and the background workers, with graceful shutdown.
package vitrineapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/gateway"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/jwt"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/smtp"
	authservice "github.com/isdev18/vitrine-do-vendedor/internal/services/auth"
	"github.com/isdev18/vitrine-do-vendedor/internal/services/mailer"
	paymentservice "github.com/isdev18/vitrine-do-vendedor/internal/services/payment"
	"github.com/isdev18/vitrine-do-vendedor/internal/session"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

// mailerInterval is how often the email queue is drained.
const mailerInterval = 30 * time.Second

// App holds the composed application.
type App struct {
	server *http.Server
	logger *slog.Logger
	bucket *kv.SQLite
	cfg    *config.Config

	auth   *authservice.Service
	mailer *mailer.Service
}

// New composes the application from the configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	bucket, err := kv.NewSQLite(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	repo, err := store.New(bucket, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(bucket, kv.NewMemory())
	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(repo, sessions, jwtMaker, cfg, logger)
	gw := gateway.NewSimulated(cfg.GatewayDelay, cfg.TaxaSucesso)
	paymentService := paymentservice.New(repo, gw, cfg, logger)
	transport := smtp.NewTransport(cfg, logger)
	mailerService := mailer.New(repo, transport, cfg, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, repo, authService, paymentService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		bucket: bucket,
		cfg:    cfg,
		auth:   authService,
		mailer: mailerService,
	}, nil
}

// Run starts the HTTP server and the background workers and blocks until
// the context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	go a.mailer.Run(ctx, mailerInterval)
	go a.refreshSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.bucket.Close(); cerr != nil {
			a.logger.Error("failed to close storage", sl.Err(cerr))
		}
		return err
	}
}

// refreshSessions keeps the persisted session alive while the process
// runs, pushing its expiry forward on the configured interval.
func (a *App) refreshSessions(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SessionRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.auth.RefreshSession(); err != nil {
				a.logger.Warn("session refresh failed", sl.Err(err))
			}
		}
	}
}
