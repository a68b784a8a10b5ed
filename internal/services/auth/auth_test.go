package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/jwt"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/session"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, err := store.New(kv.NewMemory(), log)
	require.NoError(t, err)

	cfg := &config.Config{
		Seguranca: config.Seguranca{
			SenhaMinLength:     6,
			SenhaRequerNumero:  true,
			MaxTentativasLogin: 5,
			BloqueioDuracao:    15 * time.Minute,
			SessionTimeout:     time.Hour,
			SessionRefresh:     5 * time.Minute,
			ResetTokenTTL:      time.Hour,
		},
	}
	sessions := session.NewManager(kv.NewMemory(), kv.NewMemory())
	maker := jwt.NewMaker("test-secret", time.Hour)
	return New(repo, sessions, maker, cfg, log), repo
}

func register(t *testing.T, svc *Service, email string) *models.User {
	t.Helper()
	user, err := svc.Register(email, "senha123", "senha123")
	require.NoError(t, err)
	return user
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name   string
		email  string
		senha  string
		repeat string
		rule   string
	}{
		{"empty fields", "", "", "", "campos_obrigatorios"},
		{"bad email", "not-an-email", "senha123", "senha123", "email"},
		{"short password", "a@b.com", "s1", "s1", "senha_min"},
		{"no digit", "a@b.com", "senhasenha", "senhasenha", "senha_numero"},
		{"mismatch", "a@b.com", "senha123", "senha124", "senha_confirmacao"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.email, tc.senha, tc.repeat)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.rule, verr.Rule)
		})
	}
}

func TestRegisterCreatesAccount(t *testing.T) {
	svc, repo := newTestService(t)

	user := register(t, svc, "maria@example.com")
	assert.Equal(t, "maria", user.Nome)
	assert.Equal(t, models.UserStatusPendente, user.Status)

	emails, err := repo.PendingEmails()
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, models.EmailBoasVindas, emails[0].Tipo)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	register(t, svc, "maria@example.com")
	_, err := svc.Register("Maria@Example.com", "senha123", "senha123")
	assert.ErrorIs(t, err, models.ErrDuplicateKey)
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	user := register(t, svc, "maria@example.com")

	sess, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.Empty(t, sess.User.SenhaHash)

	assert.True(t, svc.IsAuthenticated())
	current := svc.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, user.Email, current.Email)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")

	_, errWrong := svc.Login("maria@example.com", "errada99", false)
	_, errUnknown := svc.Login("ninguem@example.com", "senha123", false)

	assert.ErrorIs(t, errWrong, models.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, models.ErrInvalidCredentials)
}

func TestLoginBlockedAccount(t *testing.T) {
	svc, repo := newTestService(t)
	user := register(t, svc, "maria@example.com")

	blocked := models.UserStatusBloqueado
	_, err := repo.UpdateUser(user.ID, models.UserUpdate{Status: &blocked})
	require.NoError(t, err)

	_, err = svc.Login("maria@example.com", "senha123", false)
	assert.ErrorIs(t, err, models.ErrAccountBlocked)
}

func TestLoginRateLimited(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")

	for i := 0; i < 5; i++ {
		_, err := svc.Login("maria@example.com", "errada99", false)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	_, err := svc.Login("maria@example.com", "senha123", false)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestLoginResetsAttemptBudget(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")

	for i := 0; i < 3; i++ {
		_, _ = svc.Login("maria@example.com", "errada99", false)
	}
	_, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = svc.Login("maria@example.com", "errada99", false)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")

	_, err := svc.Login("maria@example.com", "senha123", true)
	require.NoError(t, err)
	require.True(t, svc.IsAuthenticated())

	require.NoError(t, svc.Logout())
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())
}

func TestExpiredSessionIsCleared(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.SessionTimeout = -time.Minute
	register(t, svc, "maria@example.com")

	_, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)

	assert.False(t, svc.IsAuthenticated())
	sess, err := svc.sessions.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestIsAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login("admin@vitrinevendedor.com", "admin123", false)
	require.NoError(t, err)
	assert.True(t, svc.IsAdmin())
	assert.True(t, svc.RequireAdmin())
	assert.True(t, svc.HasActiveSubscription())
}

func TestHasActiveSubscription(t *testing.T) {
	svc, repo := newTestService(t)
	user := register(t, svc, "maria@example.com")

	_, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)
	assert.False(t, svc.HasActiveSubscription())

	plano, _ := config.PlanoByID("basico")
	_, err = repo.CreateSubscription(user.ID, plano, 7*24*time.Hour, 30*24*time.Hour)
	require.NoError(t, err)
	assert.True(t, svc.HasActiveSubscription())
	assert.True(t, svc.RequireSubscription())
}

func TestForgotPasswordAntiEnumeration(t *testing.T) {
	svc, repo := newTestService(t)
	user := register(t, svc, "maria@example.com")

	msgKnown, err := svc.ForgotPassword("maria@example.com")
	require.NoError(t, err)
	msgUnknown, err := svc.ForgotPassword("ninguem@example.com")
	require.NoError(t, err)
	assert.Equal(t, msgKnown, msgUnknown)

	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpires)
}

func TestResetPasswordFlow(t *testing.T) {
	svc, repo := newTestService(t)
	user := register(t, svc, "maria@example.com")

	_, err := svc.ForgotPassword("maria@example.com")
	require.NoError(t, err)
	stored, err := repo.UserByID(user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(stored.ResetToken, "nova1234", "nova1234"))

	_, err = svc.Login("maria@example.com", "senha123", false)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Login("maria@example.com", "nova1234", false)
	require.NoError(t, err)

	err = svc.ResetPassword(stored.ResetToken, "outra123", "outra123")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.ResetPassword("reset_inexistente", "nova1234", "nova1234")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")
	_, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)

	err = svc.ChangePassword("errada99", "nova1234", "nova1234")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword("senha123", "nova1234", "nova1234"))
	require.NoError(t, svc.Logout())

	_, err = svc.Login("maria@example.com", "nova1234", false)
	require.NoError(t, err)
}

func TestRefreshSessionExtendsExpiry(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "maria@example.com")

	sess, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)
	before := sess.ExpiresAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.RefreshSession())

	after, err := svc.sessions.Current()
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.True(t, after.ExpiresAt.After(before))
}

func TestAuthenticateToken(t *testing.T) {
	svc, _ := newTestService(t)
	user := register(t, svc, "maria@example.com")

	sess, err := svc.Login("maria@example.com", "senha123", false)
	require.NoError(t, err)

	resolved, err := svc.AuthenticateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.AuthenticateToken("not-a-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
