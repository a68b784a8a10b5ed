// Package auth implements registration, login, session management, the
// route-guard predicates and the password recovery flows on top of the
// record store.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/jwt"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/password"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/session"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

// ErrTooManyAttempts is returned when the per-account login limiter
// rejects an attempt during the lockout window.
var ErrTooManyAttempts = errors.New("muitas tentativas de login, tente novamente mais tarde")

// GenericResetMessage is always returned by ForgotPassword so callers
// cannot probe which emails are registered.
const GenericResetMessage = "Se o email estiver cadastrado, você receberá instruções para redefinir sua senha."

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var digitRe = regexp.MustCompile(`\d`)

// Repository is the slice of the record store the auth service needs.
type Repository interface {
	CreateUser(params store.CreateUserParams) (*models.User, error)
	UserByID(id string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
	UserByResetToken(token string) (*models.User, error)
	UpdateUser(id string, update models.UserUpdate) (*models.User, error)
	SubscriptionByUserID(userID string) (*models.Subscription, error)
	QueueEmail(tipo, userID string, data map[string]string) error
	AddLog(action, userID string, data map[string]string)
}

// Service holds the auth state machine: Anonymous -> Authenticated ->
// (expired | logged out) -> Anonymous.
type Service struct {
	repo     Repository
	sessions *session.Manager
	jwtMaker jwt.Maker
	cfg      *config.Config
	log      *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds the auth service.
func New(repo Repository, sessions *session.Manager, jwtMaker jwt.Maker, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		jwtMaker: jwtMaker,
		cfg:      cfg,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Register validates the fields, creates the account (status pendente,
// vitrine included), queues the welcome email and logs the outcome.
func (s *Service) Register(email, senha, confirmarSenha string) (*models.User, error) {
	const op = "auth.Register"

	if err := s.validateRegistration(email, senha, confirmarSenha); err != nil {
		s.repo.AddLog("register_failed", "", map[string]string{"email": store.NormalizeEmail(email)})
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(senha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	nome := strings.SplitN(email, "@", 2)[0]
	user, err := s.repo.CreateUser(store.CreateUserParams{
		Email:     email,
		SenhaHash: hash,
		Nome:      nome,
	})
	if err != nil {
		s.repo.AddLog("register_failed", "", map[string]string{"email": store.NormalizeEmail(email)})
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.QueueEmail(models.EmailBoasVindas, user.ID, nil); err != nil {
		s.log.Warn("failed to queue welcome email", sl.Err(err))
	}
	s.repo.AddLog("register_success", user.ID, map[string]string{"email": user.Email})
	s.log.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

func (s *Service) validateRegistration(email, senha, confirmarSenha string) error {
	if email == "" || senha == "" || confirmarSenha == "" {
		return models.NewValidationError("campos_obrigatorios", "todos os campos são obrigatórios")
	}
	if !emailRe.MatchString(email) {
		return models.NewValidationError("email", "email inválido")
	}
	return s.validatePassword(senha, confirmarSenha)
}

func (s *Service) validatePassword(senha, confirmarSenha string) error {
	if len(senha) < s.cfg.SenhaMinLength {
		return models.NewValidationError("senha_min",
			fmt.Sprintf("a senha deve ter no mínimo %d caracteres", s.cfg.SenhaMinLength))
	}
	if s.cfg.SenhaRequerNumero && !digitRe.MatchString(senha) {
		return models.NewValidationError("senha_numero", "a senha deve conter pelo menos um número")
	}
	if senha != confirmarSenha {
		return models.NewValidationError("senha_confirmacao", "as senhas não conferem")
	}
	return nil
}

// Login verifies the credentials and persists a fresh session. Unknown
// email and wrong password fail with the same ErrInvalidCredentials so
// accounts cannot be enumerated; blocked accounts fail distinctly.
func (s *Service) Login(email, senha string, lembrar bool) (*models.Session, error) {
	const op = "auth.Login"

	email = store.NormalizeEmail(email)
	if !s.allowAttempt(email) {
		s.repo.AddLog("login_failed", "", map[string]string{"email": email, "motivo": "rate_limited"})
		return nil, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	user, err := s.repo.UserByEmail(email)
	if err != nil {
		s.repo.AddLog("login_failed", "", map[string]string{"email": email})
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if user.Status == models.UserStatusBloqueado {
		s.repo.AddLog("login_failed", user.ID, map[string]string{"motivo": "bloqueado"})
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountBlocked)
	}
	if err := password.CompareHash(user.SenhaHash, senha); err != nil {
		s.repo.AddLog("login_failed", user.ID, nil)
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	sess := models.Session{
		Token:     token,
		UserID:    user.ID,
		User:      user.Sanitized(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTimeout),
		Remember:  lembrar,
	}
	if err := s.sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.resetAttempts(email)
	s.repo.AddLog("login_success", user.ID, nil)
	s.log.Info("user logged in", slog.String("user_id", user.ID))
	return &sess, nil
}

// allowAttempt consults the per-email login limiter. The limiter refills
// one attempt per (lockout / max attempts), which empties the budget for
// the lockout window after a burst of failures.
func (s *Service) allowAttempt(email string) bool {
	if s.cfg.MaxTentativasLogin <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[email]
	if !ok {
		every := s.cfg.BloqueioDuracao / time.Duration(s.cfg.MaxTentativasLogin)
		limiter = rate.NewLimiter(rate.Every(every), s.cfg.MaxTentativasLogin)
		s.limiters[email] = limiter
	}
	return limiter.Allow()
}

func (s *Service) resetAttempts(email string) {
	s.mu.Lock()
	delete(s.limiters, email)
	s.mu.Unlock()
}

// Logout logs the action when a user is present and clears every session
// key from both storage scopes.
func (s *Service) Logout() error {
	const op = "auth.Logout"

	sess, err := s.sessions.Current()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sess != nil {
		s.repo.AddLog("logout", sess.UserID, nil)
	}
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsAuthenticated reports whether a live session exists. An expired
// session is cleared as a side effect.
func (s *Service) IsAuthenticated() bool {
	sess, err := s.sessions.Current()
	if err != nil || sess == nil {
		return false
	}
	if sess.Expired(time.Now().UTC()) {
		if err := s.Logout(); err != nil {
			s.log.Warn("failed to clear expired session", sl.Err(err))
		}
		return false
	}
	return true
}

// CurrentUser returns the sanitized session user, nil when anonymous.
func (s *Service) CurrentUser() *models.User {
	sess := s.currentSession()
	if sess == nil {
		return nil
	}
	user := sess.User.Sanitized()
	return &user
}

func (s *Service) currentSession() *models.Session {
	if !s.IsAuthenticated() {
		return nil
	}
	sess, err := s.sessions.Current()
	if err != nil || sess == nil {
		return nil
	}
	return sess
}

// IsAdmin reports whether the session user holds the admin role.
func (s *Service) IsAdmin() bool {
	sess := s.currentSession()
	return sess != nil && sess.User.Role == models.RoleAdmin
}

// HasActiveSubscription reports whether the session user may use the
// subscriber features. Admins always pass; everyone else needs a live
// trial or active subscription.
func (s *Service) HasActiveSubscription() bool {
	sess := s.currentSession()
	if sess == nil {
		return false
	}
	if sess.User.Role == models.RoleAdmin {
		return true
	}
	sub, err := s.repo.SubscriptionByUserID(sess.UserID)
	if err != nil {
		return false
	}
	return sub.Status == models.SubscriptionStatusTrial || sub.Status == models.SubscriptionStatusAtivo
}

// RequireAuth is the route-guard predicate for authenticated pages.
func (s *Service) RequireAuth() bool { return s.IsAuthenticated() }

// RequireAdmin is the route-guard predicate for the admin area.
func (s *Service) RequireAdmin() bool { return s.IsAdmin() }

// RequireSubscription is the route-guard predicate for subscriber pages.
func (s *Service) RequireSubscription() bool { return s.HasActiveSubscription() }

// ForgotPassword issues a single-use reset token with a short expiry.
// The returned message is identical whether or not the email exists.
func (s *Service) ForgotPassword(email string) (string, error) {
	const op = "auth.ForgotPassword"

	user, err := s.repo.UserByEmail(email)
	if err != nil {
		return GenericResetMessage, nil
	}

	token := "reset_" + uuid.NewString()
	expires := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
	if _, err := s.repo.UpdateUser(user.ID, models.UserUpdate{
		ResetToken:        &token,
		ResetTokenExpires: &expires,
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.QueueEmail(models.EmailRecuperacaoSenha, user.ID, map[string]string{"reset_token": token}); err != nil {
		s.log.Warn("failed to queue reset email", sl.Err(err))
	}
	s.repo.AddLog("password_reset_requested", user.ID, nil)
	return GenericResetMessage, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *Service) ResetPassword(token, novaSenha, confirmarSenha string) error {
	const op = "auth.ResetPassword"

	if err := s.validatePassword(novaSenha, confirmarSenha); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.UserByResetToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}

	hash, err := password.GetHash(novaSenha)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	empty := ""
	if _, err := s.repo.UpdateUser(user.ID, models.UserUpdate{
		SenhaHash:  &hash,
		ResetToken: &empty,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.repo.AddLog("password_reset_success", user.ID, nil)
	return nil
}

// ChangePassword verifies the current password and stores a new hash for
// the session user.
func (s *Service) ChangePassword(senhaAtual, novaSenha, confirmarSenha string) error {
	const op = "auth.ChangePassword"

	sess := s.currentSession()
	if sess == nil {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	return s.ChangePasswordFor(sess.UserID, senhaAtual, novaSenha, confirmarSenha)
}

// ChangePasswordFor is ChangePassword for an explicit user, used by the
// HTTP binding where the user comes from the bearer token.
func (s *Service) ChangePasswordFor(userID, senhaAtual, novaSenha, confirmarSenha string) error {
	const op = "auth.ChangePassword"

	user, err := s.repo.UserByID(userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.SenhaHash, senhaAtual); err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err := s.validatePassword(novaSenha, confirmarSenha); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(novaSenha)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.UpdateUser(user.ID, models.UserUpdate{SenhaHash: &hash}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.repo.AddLog("password_changed", user.ID, nil)
	return nil
}

// RefreshSession pushes the expiry of the live session forward by the
// configured session timeout.
func (s *Service) RefreshSession() error {
	const op = "auth.RefreshSession"

	sess := s.currentSession()
	if sess == nil {
		return nil
	}
	sess.ExpiresAt = time.Now().UTC().Add(s.cfg.SessionTimeout)
	if err := s.sessions.Save(*sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AuthenticateToken validates a bearer token and resolves its user. The
// HTTP binding uses it instead of the persisted session.
func (s *Service) AuthenticateToken(token string) (*models.User, error) {
	const op = "auth.AuthenticateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	user, err := s.repo.UserByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	if user.Status == models.UserStatusBloqueado {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountBlocked)
	}
	return user, nil
}
