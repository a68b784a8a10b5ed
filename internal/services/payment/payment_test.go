package payment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/gateway"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

func newTestService(t *testing.T, successRate float64) (*Service, *store.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, err := store.New(kv.NewMemory(), log)
	require.NoError(t, err)

	cfg := &config.Config{
		Pagamento: config.Pagamento{
			Moeda:       "BRL",
			DiasTrial:   7,
			DiasPeriodo: 30,
			TaxaSucesso: successRate,
		},
	}
	gw := gateway.NewSimulated(0, successRate)
	return New(repo, gw, cfg, log), repo
}

func createUser(t *testing.T, repo *store.Store) *models.User {
	t.Helper()
	user, err := repo.CreateUser(store.CreateUserParams{
		Email:     "maria@example.com",
		SenhaHash: "hash",
		Nome:      "Maria",
	})
	require.NoError(t, err)
	return user
}

func TestSubscribeApproved(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	require.NotNil(t, res.Subscription)
	assert.Equal(t, models.SubscriptionStatusTrial, res.Subscription.Status)
	assert.Equal(t, 29.90, res.Subscription.Valor)
	assert.Equal(t, models.PagamentoStatusAprovado, res.Pagamento.Status)

	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusAtivo, stored.Status)
	assert.Equal(t, "basico", stored.PlanoID)

	emails, err := repo.PendingEmails()
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, models.EmailConfirmacaoPagamento, emails[0].Tipo)
}

func TestSubscribeDeclined(t *testing.T) {
	svc, repo := newTestService(t, 0.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	assert.ErrorIs(t, err, models.ErrPaymentDeclined)
	require.NotNil(t, res)
	assert.Nil(t, res.Subscription)
	assert.Equal(t, models.PagamentoStatusRecusado, res.Pagamento.Status)

	_, err = repo.SubscriptionByUserID(user.ID)
	assert.ErrorIs(t, err, models.ErrNoSubscription)
}

func TestSubscribeUnknownPlan(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := svc.Subscribe(context.Background(), user.ID, "diamante", models.MetodoCartao, CicloMensal)
	assert.ErrorIs(t, err, models.ErrInvalidPlan)
}

func TestSubscribeAnnualPricing(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "profissional", models.MetodoCartao, CicloAnual)
	require.NoError(t, err)
	assert.Equal(t, 499.00, res.Pagamento.Valor)

	days := res.Subscription.CurrentPeriodEnd.Sub(res.Subscription.CurrentPeriodStart)
	assert.Equal(t, 365*24*time.Hour, days)
}

func TestSubscribeBoletoStaysPending(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoBoleto, CicloMensal)
	require.NoError(t, err)
	assert.Equal(t, models.PagamentoStatusPendente, res.Pagamento.Status)
	assert.NotEmpty(t, res.Codigo)
	assert.Len(t, res.Codigo, 54)
}

func TestSubscribePixCode(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoPix, CicloMensal)
	require.NoError(t, err)
	assert.Equal(t, models.PagamentoStatusPendente, res.Pagamento.Status)
	assert.Contains(t, res.Codigo, "br.gov.bcb.pix")
}

func TestApplyGatewayResultApproved(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoBoleto, CicloMensal)
	require.NoError(t, err)

	settled, err := svc.ApplyGatewayResult(res.Pagamento.GatewayID, gateway.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PagamentoStatusAprovado, settled.Status)

	sub, err := repo.SubscriptionByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusAtivo, sub.Status)

	again, err := svc.ApplyGatewayResult(res.Pagamento.GatewayID, gateway.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PagamentoStatusAprovado, again.Status)
}

func TestApplyGatewayResultRejected(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoPix, CicloMensal)
	require.NoError(t, err)

	settled, err := svc.ApplyGatewayResult(res.Pagamento.GatewayID, gateway.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.PagamentoStatusRecusado, settled.Status)
}

func TestRenewReactivatesOverdue(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	first, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	overdue := models.SubscriptionStatusInadimplente
	_, err = repo.UpdateSubscription(first.Subscription.ID, models.SubscriptionUpdate{Status: &overdue})
	require.NoError(t, err)

	res, err := svc.Renew(context.Background(), user.ID, models.MetodoCartao)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusAtivo, res.Subscription.Status)
	assert.Equal(t, models.PagamentoStatusAprovado, res.Pagamento.Status)

	emails, err := repo.PendingEmails()
	require.NoError(t, err)
	tipos := make([]string, 0, len(emails))
	for _, e := range emails {
		tipos = append(tipos, e.Tipo)
	}
	assert.Contains(t, tipos, models.EmailVitrineReativada)
}

func TestRenewDeclined(t *testing.T) {
	approving, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := approving.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	declining := New(repo, gateway.NewSimulated(0, 0.0), approving.cfg, log)

	res, err := declining.Renew(context.Background(), user.ID, models.MetodoCartao)
	assert.ErrorIs(t, err, models.ErrPaymentDeclined)
	require.NotNil(t, res)
	assert.Equal(t, models.PagamentoStatusRecusado, res.Pagamento.Status)
}

func TestChangePlanUpgradeChargesDelta(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	sub, err := svc.ChangePlan(context.Background(), user.ID, "profissional")
	require.NoError(t, err)
	assert.Equal(t, "profissional", sub.PlanoID)
	assert.Equal(t, 49.90, sub.Valor)

	pagamentos, err := repo.PagamentosByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, pagamentos, 2)
	assert.InDelta(t, 20.00, pagamentos[0].Valor, 0.001)
}

func TestChangePlanDowngradeNoCharge(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := svc.Subscribe(context.Background(), user.ID, "premium", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	sub, err := svc.ChangePlan(context.Background(), user.ID, "basico")
	require.NoError(t, err)
	assert.Equal(t, "basico", sub.PlanoID)

	pagamentos, err := repo.PagamentosByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, pagamentos, 1)
}

func TestChangePlanDeclinedKeepsPlan(t *testing.T) {
	approving, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := approving.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	declining := New(repo, gateway.NewSimulated(0, 0.0), approving.cfg, log)

	_, err = declining.ChangePlan(context.Background(), user.ID, "premium")
	assert.ErrorIs(t, err, models.ErrPaymentDeclined)

	sub, err := repo.SubscriptionByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "basico", sub.PlanoID)
}

func TestCancel(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(user.ID))

	_, err = repo.SubscriptionByUserID(user.ID)
	assert.ErrorIs(t, err, models.ErrNoSubscription)

	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusCancelado, stored.Status)

	err = svc.Cancel(user.ID)
	assert.ErrorIs(t, err, models.ErrNoSubscription)
}

func TestCheckStatusExpiredTrialGoesDelinquent(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	// Age the trial out; the paid period still runs and must not matter.
	past := time.Now().UTC().Add(-time.Hour)
	_, err = repo.UpdateSubscription(res.Subscription.ID, models.SubscriptionUpdate{TrialEndsAt: &past})
	require.NoError(t, err)

	sub, err := svc.CheckStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInadimplente, sub.Status)

	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInadimplente, stored.Status)

	// Settled state stays put on a second pass.
	again, err := svc.CheckStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInadimplente, again.Status)

	// The overdue notice belongs to a lapsed paid period, not a trial.
	emails, err := repo.PendingEmails()
	require.NoError(t, err)
	for _, e := range emails {
		assert.NotEqual(t, models.EmailPagamentoAtrasado, e.Tipo)
	}
}

func TestCheckStatusMarksOverdue(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	res, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	active := models.SubscriptionStatusAtivo
	_, err = repo.UpdateSubscription(res.Subscription.ID, models.SubscriptionUpdate{
		Status:           &active,
		TrialEndsAt:      &past,
		CurrentPeriodEnd: &past,
	})
	require.NoError(t, err)

	sub, err := svc.CheckStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInadimplente, sub.Status)

	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInadimplente, stored.Status)

	// Settled state stays put on a second pass.
	again, err := svc.CheckStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInadimplente, again.Status)

	emails, err := repo.PendingEmails()
	require.NoError(t, err)
	overdue := 0
	for _, e := range emails {
		if e.Tipo == models.EmailPagamentoAtrasado {
			overdue++
		}
	}
	assert.Equal(t, 1, overdue)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc, repo := newTestService(t, 1.0)
	user := createUser(t, repo)

	_, err := svc.Subscribe(context.Background(), user.ID, "basico", models.MetodoCartao, CicloMensal)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Renew(context.Background(), user.ID, models.MetodoCartao)
	require.NoError(t, err)

	history, err := svc.History(user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, !history[0].CreatedAt.Before(history[1].CreatedAt))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Assinatura ativa", StatusMessage(models.SubscriptionStatusAtivo))
	assert.Equal(t, "Sem assinatura", StatusMessage(""))
}
