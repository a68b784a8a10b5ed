package mailer

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/smtp"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockClient struct {
	mock.Mock
	body bytes.Buffer
}

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func (m *MockClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return nopWriteCloser{&m.body}, nil
}

func (m *MockClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestMailer(t *testing.T, transport smtp.TransportInterface) (*Service, *store.Store, *models.User) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, err := store.New(kv.NewMemory(), log)
	require.NoError(t, err)

	user, err := repo.CreateUser(store.CreateUserParams{
		Email:     "maria@example.com",
		SenhaHash: "hash",
		Nome:      "Maria",
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Email: config.Email{
			Remetente:     "contato@vitrinevendedor.com",
			NomeRemetente: "Vitrine do Vendedor",
		},
	}
	return New(repo, transport, cfg, log), repo, user
}

func TestProcessQueueDelivers(t *testing.T) {
	client := new(MockClient)
	client.On("Mail", "contato@vitrinevendedor.com").Return(nil)
	client.On("Rcpt", "maria@example.com").Return(nil)
	client.On("Data").Return(nil, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("contato@vitrinevendedor.com")
	transport.On("Connect").Return(client, nil)

	svc, repo, user := newTestMailer(t, transport)
	require.NoError(t, repo.QueueEmail(models.EmailBoasVindas, user.ID, nil))

	require.NoError(t, svc.ProcessQueue())

	pending, err := repo.PendingEmails()
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Contains(t, client.body.String(), "Bem-vindo")
	assert.Contains(t, client.body.String(), "Olá, Maria!")
	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestProcessQueueRetriesOnFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("contato@vitrinevendedor.com")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc, repo, user := newTestMailer(t, transport)
	require.NoError(t, repo.QueueEmail(models.EmailBoasVindas, user.ID, nil))

	require.NoError(t, svc.ProcessQueue())

	pending, err := repo.PendingEmails()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestProcessQueueGivesUpAfterMaxAttempts(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("contato@vitrinevendedor.com")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc, repo, user := newTestMailer(t, transport)
	require.NoError(t, repo.QueueEmail(models.EmailBoasVindas, user.ID, nil))

	for i := 0; i < maxAttempts+2; i++ {
		require.NoError(t, svc.ProcessQueue())
	}

	pending, err := repo.PendingEmails()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, maxAttempts, pending[0].Attempts)
	transport.AssertNumberOfCalls(t, "Connect", maxAttempts)
}

func TestRenderTemplates(t *testing.T) {
	cases := []struct {
		tipo    string
		subject string
	}{
		{models.EmailBoasVindas, "Bem-vindo à Vitrine do Vendedor!"},
		{models.EmailRecuperacaoSenha, "Recuperação de senha"},
		{models.EmailConfirmacaoPagamento, "Pagamento confirmado"},
		{models.EmailPagamentoAtrasado, "Pagamento pendente"},
		{models.EmailVitrineReativada, "Sua vitrine está no ar novamente"},
		{models.EmailCancelamento, "Assinatura cancelada"},
	}
	for _, tc := range cases {
		subject, body := renderTemplate(tc.tipo, "Maria", map[string]string{"plano": "Básico", "valor": "29.90", "reset_token": "tok"})
		assert.Equal(t, tc.subject, subject)
		assert.Contains(t, body, "Maria")
	}
}
