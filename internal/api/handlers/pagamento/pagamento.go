// Package pagamento contains the HTTP handlers of the billing endpoints:
// plan catalog, subscribe, renewal, plan change, cancellation, payment
// history, subscription status and the gateway webhook.
package pagamento

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/metrics"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/middlewarectx"
	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/services/payment"
)

// Service is the billing surface the handlers call.
type Service interface {
	Subscribe(ctx context.Context, userID, planoID, metodo, ciclo string) (*payment.Result, error)
	Renew(ctx context.Context, userID, metodo string) (*payment.Result, error)
	ChangePlan(ctx context.Context, userID, novoPlanoID string) (*models.Subscription, error)
	Cancel(userID string) error
	CheckStatus(userID string) (*models.Subscription, error)
	ApplyGatewayResult(gatewayID, status string) (*models.Pagamento, error)
	History(userID string) ([]models.Pagamento, error)
}

// NewPlanos builds the GET /planos handler: the public plan catalog,
// cheapest first.
func NewPlanos(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planos := make([]config.Plano, 0, len(config.Planos))
		for _, p := range config.Planos {
			planos = append(planos, p)
		}
		sort.Slice(planos, func(i, j int) bool { return planos[i].Preco < planos[j].Preco })
		render.JSON(w, r, response.OKWithData(planos))
	}
}

// SubscribeRequest carries the checkout form.
type SubscribeRequest struct {
	PlanoID string `json:"plano_id" validate:"required"`
	Metodo  string `json:"metodo" validate:"omitempty,oneof=cartao boleto pix"`
	Ciclo   string `json:"ciclo" validate:"omitempty,oneof=mensal anual"`
}

// NewSubscribe builds the POST /pagamento/subscribe handler.
func NewSubscribe(log *slog.Logger, service Service) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.subscribe"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req SubscribeRequest
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

		result, err := service.Subscribe(r.Context(), user.ID, req.PlanoID, req.Metodo, req.Ciclo)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidPlan):
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(models.ErrInvalidPlan.Error()))
			case errors.Is(err, models.ErrPaymentDeclined):
				metrics.PaymentsTotal.WithLabelValues(models.PagamentoStatusRecusado).Inc()
				log.Info("payment declined", slog.String("user_id", user.ID))
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("Pagamento recusado pela operadora"))
			default:
				log.Error("subscribe failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}

		metrics.PaymentsTotal.WithLabelValues(result.Pagamento.Status).Inc()
		log.Info("subscription started",
			slog.String("user_id", user.ID), slog.String("plano", req.PlanoID))
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response.OKWithData(result))
	}
}

// RenewRequest carries the renewal form.
type RenewRequest struct {
	Metodo string `json:"metodo" validate:"omitempty,oneof=cartao boleto pix"`
}

// NewRenew builds the POST /pagamento/renew handler.
func NewRenew(log *slog.Logger, service Service) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.renew"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req RenewRequest
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

		result, err := service.Renew(r.Context(), user.ID, req.Metodo)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNoSubscription):
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(models.ErrNoSubscription.Error()))
			case errors.Is(err, models.ErrPaymentDeclined):
				metrics.PaymentsTotal.WithLabelValues(models.PagamentoStatusRecusado).Inc()
				log.Info("renewal declined", slog.String("user_id", user.ID))
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("Pagamento recusado pela operadora"))
			default:
				log.Error("renewal failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}

		metrics.PaymentsTotal.WithLabelValues(result.Pagamento.Status).Inc()
		log.Info("subscription renewed", slog.String("user_id", user.ID))
		render.JSON(w, r, response.OKWithData(result))
	}
}

// ChangePlanRequest carries the plan-change form.
type ChangePlanRequest struct {
	PlanoID string `json:"plano_id" validate:"required"`
}

// NewChangePlan builds the POST /pagamento/change-plan handler.
func NewChangePlan(log *slog.Logger, service Service) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.changeplan"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())

		var req ChangePlanRequest
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

		sub, err := service.ChangePlan(r.Context(), user.ID, req.PlanoID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidPlan):
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, response.Error(models.ErrInvalidPlan.Error()))
			case errors.Is(err, models.ErrNoSubscription):
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(models.ErrNoSubscription.Error()))
			case errors.Is(err, models.ErrPaymentDeclined):
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("Pagamento recusado pela operadora"))
			default:
				log.Error("plan change failed", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
			return
		}

		log.Info("plan changed",
			slog.String("user_id", user.ID), slog.String("plano", req.PlanoID))
		render.JSON(w, r, response.OKWithData(sub))
	}
}

// NewCancel builds the POST /pagamento/cancel handler.
func NewCancel(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.cancel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		if err := service.Cancel(user.ID); err != nil {
			if errors.Is(err, models.ErrNoSubscription) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(models.ErrNoSubscription.Error()))
				return
			}
			log.Error("cancellation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		log.Info("subscription cancelled", slog.String("user_id", user.ID))
		render.JSON(w, r, response.OK())
	}
}

// NewStatus builds the GET /pagamento/status handler: the reconciled
// subscription with its user-facing message.
func NewStatus(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.status"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		sub, err := service.CheckStatus(user.ID)
		if err != nil {
			if errors.Is(err, models.ErrNoSubscription) {
				render.JSON(w, r, response.OKWithData(map[string]any{
					"subscription": nil,
					"message":      payment.StatusMessage(""),
				}))
				return
			}
			log.Error("status check failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		render.JSON(w, r, response.OKWithData(map[string]any{
			"subscription": sub,
			"message":      payment.StatusMessage(sub.Status),
		}))
	}
}

// NewHistory builds the GET /pagamento/history handler.
func NewHistory(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.history"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := middlewarectx.UserFromContext(r.Context())
		pagamentos, err := service.History(user.ID)
		if err != nil {
			log.Error("history lookup failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, response.OKWithData(pagamentos))
	}
}

// WebhookRequest is the gateway notification payload.
type WebhookRequest struct {
	GatewayID string `json:"gateway_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=approved rejected"`
}

// NewWebhook builds the POST /pagamento/webhook handler. The shared
// secret travels in the X-Webhook-Token header.
func NewWebhook(log *slog.Logger, service Service, secret string) http.HandlerFunc {
	validate := validator.New()
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pagamento.webhook"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if r.Header.Get("X-Webhook-Token") != secret {
			log.Error("webhook token mismatch")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid webhook token"))
			return
		}

		var req WebhookRequest
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

		pagamento, err := service.ApplyGatewayResult(req.GatewayID, req.Status)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("pagamento não encontrado"))
				return
			}
			log.Error("webhook processing failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		metrics.PaymentsTotal.WithLabelValues(pagamento.Status).Inc()
		log.Info("webhook applied",
			slog.String("gateway_id", req.GatewayID), slog.String("status", pagamento.Status))
		render.JSON(w, r, response.OKWithData(pagamento))
	}
}
