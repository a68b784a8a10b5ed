// Package payment implements the subscription billing flows: subscribing
// to a plan, renewals, plan changes, cancellation, the periodic status
// check and the gateway webhook appliers.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/gateway"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

// Billing cycles.
const (
	CicloMensal = "mensal"
	CicloAnual  = "anual"
)

// Repository is the slice of the record store the billing flows need.
type Repository interface {
	UserByID(id string) (*models.User, error)
	UpdateUser(id string, update models.UserUpdate) (*models.User, error)
	CreateSubscription(userID string, plano config.Plano, trial, period time.Duration) (*models.Subscription, error)
	SubscriptionByUserID(userID string) (*models.Subscription, error)
	UpdateSubscription(id string, update models.SubscriptionUpdate) (*models.Subscription, error)
	CancelSubscription(userID string) error
	CreatePagamento(userID string, params store.CreatePagamentoParams) (*models.Pagamento, error)
	SetPagamentoStatus(id, status string, period time.Duration) (*models.Pagamento, error)
	PagamentoByGatewayID(gatewayID string) (*models.Pagamento, error)
	PagamentosByUserID(userID string) ([]models.Pagamento, error)
	QueueEmail(tipo, userID string, data map[string]string) error
	AddLog(action, userID string, data map[string]string)
}

// Service runs the billing flows on top of the record store and the
// payment gateway.
type Service struct {
	repo    Repository
	gateway gateway.Gateway
	cfg     *config.Config
	log     *slog.Logger
	rand    *rand.Rand
}

// New builds the payment service.
func New(repo Repository, gw gateway.Gateway, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gw,
		cfg:     cfg,
		log:     log,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Result is the outcome of a subscribe or renewal. Codigo carries the
// boleto line or the pix copy-and-paste string for offline methods.
type Result struct {
	Subscription *models.Subscription `json:"subscription,omitempty"`
	Pagamento    *models.Pagamento    `json:"pagamento"`
	Codigo       string               `json:"codigo,omitempty"`
}

// Subscribe signs the user up for a plan. Card charges go through the
// gateway synchronously; a declined charge leaves a recusado payment
// record and no subscription. Boleto and pix create the subscription with
// a pendente payment that a gateway webhook settles later.
func (s *Service) Subscribe(ctx context.Context, userID, planoID, metodo, ciclo string) (*Result, error) {
	const op = "payment.Subscribe"

	plano, ok := config.PlanoByID(planoID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidPlan)
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	valor, period := s.pricing(plano, ciclo)
	trial := time.Duration(s.cfg.DiasTrial) * 24 * time.Hour

	if metodo == "" {
		metodo = models.MetodoCartao
	}
	if metodo != models.MetodoCartao {
		return s.subscribeOffline(userID, plano, metodo, valor, trial, period)
	}

	res, err := s.gateway.Process(ctx, gateway.ChargeRequest{
		Amount:        valor,
		Currency:      s.cfg.Moeda,
		CustomerEmail: user.Email,
		Description:   "Assinatura " + plano.Nome,
		Metodo:        metodo,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !res.Approved() {
		pagamento, perr := s.repo.CreatePagamento(userID, store.CreatePagamentoParams{
			Valor:         valor,
			Metodo:        metodo,
			Status:        models.PagamentoStatusRecusado,
			GatewayID:     res.ID,
			GatewayDetail: res.StatusDetail,
		})
		if perr != nil {
			return nil, fmt.Errorf("%s: %w", op, perr)
		}
		s.repo.AddLog("payment_failed", userID, map[string]string{"motivo": res.Reason})
		return &Result{Pagamento: pagamento}, fmt.Errorf("%s: %w", op, models.ErrPaymentDeclined)
	}

	sub, err := s.repo.CreateSubscription(userID, plano, trial, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pagamento, err := s.repo.CreatePagamento(userID, store.CreatePagamentoParams{
		SubscriptionID: sub.ID,
		Valor:          valor,
		Metodo:         metodo,
		Status:         models.PagamentoStatusAprovado,
		GatewayID:      res.ID,
		GatewayDetail:  res.StatusDetail,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.queue(models.EmailConfirmacaoPagamento, userID, map[string]string{
		"plano": plano.Nome,
		"valor": fmt.Sprintf("%.2f", valor),
	})
	s.log.Info("subscription started",
		slog.String("user_id", userID), slog.String("plano", planoID))
	return &Result{Subscription: sub, Pagamento: pagamento}, nil
}

func (s *Service) subscribeOffline(userID string, plano config.Plano, metodo string, valor float64, trial, period time.Duration) (*Result, error) {
	const op = "payment.Subscribe"

	sub, err := s.repo.CreateSubscription(userID, plano, trial, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	codigo := s.pixCopiaECola(valor)
	if metodo == models.MetodoBoleto {
		codigo = s.boletoLinhaDigitavel()
	}
	pagamento, err := s.repo.CreatePagamento(userID, store.CreatePagamentoParams{
		SubscriptionID: sub.ID,
		Valor:          valor,
		Metodo:         metodo,
		GatewayID:      "pay_" + uuid.NewString(),
		GatewayDetail:  "pending_" + metodo,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.repo.AddLog("payment_pending", userID, map[string]string{"metodo": metodo})
	return &Result{Subscription: sub, Pagamento: pagamento, Codigo: codigo}, nil
}

func (s *Service) pricing(plano config.Plano, ciclo string) (float64, time.Duration) {
	if ciclo == CicloAnual {
		return plano.PrecoAnual, 365 * 24 * time.Hour
	}
	return plano.Preco, time.Duration(s.cfg.DiasPeriodo) * 24 * time.Hour
}

// Renew charges the current subscription price again and, when approved,
// reactivates the subscription with a fresh billing period. An overdue
// subscriber also gets the vitrine-reactivated notice.
func (s *Service) Renew(ctx context.Context, userID, metodo string) (*Result, error) {
	const op = "payment.Renew"

	sub, err := s.repo.SubscriptionByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if metodo == "" {
		metodo = models.MetodoCartao
	}

	res, err := s.gateway.Process(ctx, gateway.ChargeRequest{
		Amount:        sub.Valor,
		Currency:      s.cfg.Moeda,
		CustomerEmail: user.Email,
		Description:   "Renovação " + sub.PlanoNome,
		Metodo:        metodo,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wasOverdue := sub.Status == models.SubscriptionStatusInadimplente

	pagamento, err := s.repo.CreatePagamento(userID, store.CreatePagamentoParams{
		SubscriptionID: sub.ID,
		Valor:          sub.Valor,
		Metodo:         metodo,
		GatewayID:      res.ID,
		GatewayDetail:  res.StatusDetail,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !res.Approved() {
		if _, err := s.repo.SetPagamentoStatus(pagamento.ID, models.PagamentoStatusRecusado, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.repo.AddLog("payment_failed", userID, map[string]string{"motivo": res.Reason})
		return &Result{Pagamento: pagamento}, fmt.Errorf("%s: %w", op, models.ErrPaymentDeclined)
	}

	period := time.Duration(s.cfg.DiasPeriodo) * 24 * time.Hour
	pagamento, err = s.repo.SetPagamentoStatus(pagamento.ID, models.PagamentoStatusAprovado, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.queue(models.EmailConfirmacaoPagamento, userID, map[string]string{
		"plano": sub.PlanoNome,
		"valor": fmt.Sprintf("%.2f", sub.Valor),
	})
	if wasOverdue {
		s.queue(models.EmailVitrineReativada, userID, nil)
	}

	renewed, err := s.repo.SubscriptionByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Subscription: renewed, Pagamento: pagamento}, nil
}

// ChangePlan moves the subscriber to another plan. An upgrade charges the
// price difference first; a declined charge keeps the current plan. The
// new price takes effect on the subscription record immediately.
func (s *Service) ChangePlan(ctx context.Context, userID, novoPlanoID string) (*models.Subscription, error) {
	const op = "payment.ChangePlan"

	plano, ok := config.PlanoByID(novoPlanoID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidPlan)
	}
	sub, err := s.repo.SubscriptionByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.PlanoID == novoPlanoID {
		return sub, nil
	}

	if delta := plano.Preco - sub.Valor; delta > 0 {
		user, err := s.repo.UserByID(userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res, err := s.gateway.Process(ctx, gateway.ChargeRequest{
			Amount:        delta,
			Currency:      s.cfg.Moeda,
			CustomerEmail: user.Email,
			Description:   "Upgrade para " + plano.Nome,
			Metodo:        models.MetodoCartao,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		status := models.PagamentoStatusAprovado
		if !res.Approved() {
			status = models.PagamentoStatusRecusado
		}
		if _, err := s.repo.CreatePagamento(userID, store.CreatePagamentoParams{
			SubscriptionID: sub.ID,
			Valor:          delta,
			Status:         status,
			GatewayID:      res.ID,
			GatewayDetail:  res.StatusDetail,
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !res.Approved() {
			s.repo.AddLog("payment_failed", userID, map[string]string{"motivo": res.Reason})
			return nil, fmt.Errorf("%s: %w", op, models.ErrPaymentDeclined)
		}
	}

	updated, err := s.repo.UpdateSubscription(sub.ID, models.SubscriptionUpdate{
		PlanoID:   &plano.ID,
		PlanoNome: &plano.Nome,
		Valor:     &plano.Preco,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.UpdateUser(userID, models.UserUpdate{PlanoID: &plano.ID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.repo.AddLog("plan_changed", userID, map[string]string{
		"de": sub.PlanoID, "para": novoPlanoID,
	})
	return updated, nil
}

// Cancel ends the user's subscription and queues the cancellation notice.
// Cancellation is terminal; a new Subscribe starts a fresh record.
func (s *Service) Cancel(userID string) error {
	const op = "payment.Cancel"

	if _, err := s.repo.SubscriptionByUserID(userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CancelSubscription(userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.queue(models.EmailCancelamento, userID, nil)
	return nil
}

// CheckStatus reconciles the user's subscription with the clock. An
// expired trial or a lapsed billing period moves the subscription and the
// user to inadimplente; the overdue notice is queued only when a paid
// period lapses. Repeated calls are no-ops once the state is settled.
func (s *Service) CheckStatus(userID string) (*models.Subscription, error) {
	const op = "payment.CheckStatus"

	sub, err := s.repo.SubscriptionByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	switch sub.Status {
	case models.SubscriptionStatusTrial:
		if now.Before(sub.TrialEndsAt) {
			return sub, nil
		}
		return s.markOverdue(sub)
	case models.SubscriptionStatusAtivo:
		if now.Before(sub.CurrentPeriodEnd) {
			return sub, nil
		}
		return s.markOverdue(sub)
	default:
		return sub, nil
	}
}

func (s *Service) markOverdue(sub *models.Subscription) (*models.Subscription, error) {
	const op = "payment.CheckStatus"

	overdue := models.SubscriptionStatusInadimplente
	updated, err := s.repo.UpdateSubscription(sub.ID, models.SubscriptionUpdate{Status: &overdue})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userStatus := models.UserStatusInadimplente
	if _, err := s.repo.UpdateUser(sub.UserID, models.UserUpdate{Status: &userStatus}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if sub.Status == models.SubscriptionStatusAtivo {
		s.queue(models.EmailPagamentoAtrasado, sub.UserID, map[string]string{"plano": sub.PlanoNome})
	}
	s.repo.AddLog("subscription_overdue", sub.UserID, map[string]string{"plano": sub.PlanoID})
	return updated, nil
}

// ApplyGatewayResult settles a payment from a gateway notification,
// matching the record by gateway reference. An approved notification
// reactivates the subscription; anything else marks the payment recusado.
func (s *Service) ApplyGatewayResult(gatewayID, status string) (*models.Pagamento, error) {
	const op = "payment.ApplyGatewayResult"

	pagamento, err := s.repo.PagamentoByGatewayID(gatewayID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pagamento.Status != models.PagamentoStatusPendente {
		return pagamento, nil
	}

	if status != gateway.StatusApproved {
		return s.repo.SetPagamentoStatus(pagamento.ID, models.PagamentoStatusRecusado, 0)
	}

	period := time.Duration(s.cfg.DiasPeriodo) * 24 * time.Hour
	settled, err := s.repo.SetPagamentoStatus(pagamento.ID, models.PagamentoStatusAprovado, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.queue(models.EmailConfirmacaoPagamento, settled.UserID, map[string]string{
		"valor": fmt.Sprintf("%.2f", settled.Valor),
	})
	return settled, nil
}

// History lists the user's payments, newest first.
func (s *Service) History(userID string) ([]models.Pagamento, error) {
	const op = "payment.History"

	pagamentos, err := s.repo.PagamentosByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pagamentos, nil
}

func (s *Service) queue(tipo, userID string, data map[string]string) {
	if err := s.repo.QueueEmail(tipo, userID, data); err != nil {
		s.log.Warn("failed to queue email", slog.String("tipo", tipo), sl.Err(err))
	}
}

var statusMessages = map[string]string{
	models.SubscriptionStatusTrial:        "Período de teste gratuito",
	models.SubscriptionStatusAtivo:        "Assinatura ativa",
	models.SubscriptionStatusInadimplente: "Pagamento pendente, renove para reativar sua vitrine",
	models.SubscriptionStatusCancelado:    "Assinatura cancelada",
	models.SubscriptionStatusBloqueado:    "Assinatura bloqueada",
}

// StatusMessage returns the user-facing text for a subscription status.
func StatusMessage(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Sem assinatura"
}

// boletoLinhaDigitavel produces a 47-digit boleto line in the usual
// five-block formatting.
func (s *Service) boletoLinhaDigitavel() string {
	digits := make([]byte, 47)
	for i := range digits {
		digits[i] = byte('0' + s.rand.Intn(10))
	}
	d := string(digits)
	return fmt.Sprintf("%s.%s %s.%s %s.%s %s %s",
		d[0:5], d[5:10], d[10:15], d[15:21], d[21:26], d[26:32], d[32:33], d[33:47])
}

// pixCopiaECola produces a pix copy-and-paste payload with a fresh
// transaction id.
func (s *Service) pixCopiaECola(valor float64) string {
	txid := strings.ReplaceAll(uuid.NewString(), "-", "")[:25]
	return fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s520400005303986540%d%.2f5802BR6214Vitrine Vendedor62%02d05%s6304",
		uuid.NewString(), len(fmt.Sprintf("%.2f", valor)), valor, len(txid)+4, txid)
}
