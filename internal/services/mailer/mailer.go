// Package mailer drains the email queue: it renders the notification
// templates and delivers them over SMTP, marking each queue entry sent or
// retried.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/config"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/sl"
	"github.com/isdev18/vitrine-do-vendedor/internal/lib/smtp"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// Queue is the slice of the record store the mailer needs.
type Queue interface {
	PendingEmails() ([]models.QueuedEmail, error)
	MarkEmailSent(id string) error
	MarkEmailAttempt(id string) error
	UserByID(id string) (*models.User, error)
}

// Service delivers queued notifications.
type Service struct {
	queue     Queue
	transport smtp.TransportInterface
	cfg       *config.Config
	log       *slog.Logger
}

// New builds the mailer.
func New(queue Queue, transport smtp.TransportInterface, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{queue: queue, transport: transport, cfg: cfg, log: log}
}

// maxAttempts bounds delivery retries per queue entry.
const maxAttempts = 3

// ProcessQueue sends every pending email once. Failed deliveries stay
// pendente with a bumped attempt counter until maxAttempts is reached.
func (s *Service) ProcessQueue() error {
	const op = "mailer.ProcessQueue"

	pending, err := s.queue.PendingEmails()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, email := range pending {
		if email.Attempts >= maxAttempts {
			continue
		}
		if err := s.deliver(email); err != nil {
			s.log.Warn("email delivery failed",
				slog.String("id", email.ID), slog.String("tipo", email.Tipo), sl.Err(err))
			if merr := s.queue.MarkEmailAttempt(email.ID); merr != nil {
				s.log.Warn("failed to record delivery attempt", sl.Err(merr))
			}
			continue
		}
		if err := s.queue.MarkEmailSent(email.ID); err != nil {
			s.log.Warn("failed to mark email sent", sl.Err(err))
		}
	}
	return nil
}

// Run processes the queue on the interval until the context ends.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ProcessQueue(); err != nil {
				s.log.Error("email queue pass failed", sl.Err(err))
			}
		}
	}
}

func (s *Service) deliver(email models.QueuedEmail) error {
	user, err := s.queue.UserByID(email.UserID)
	if err != nil {
		// Recipient deleted after queueing; treat as delivered.
		return nil
	}

	subject, body := renderTemplate(email.Tipo, user.Nome, email.Data)
	return s.sendEmail(email.EmailTo, subject, body)
}

func (s *Service) sendEmail(to, subject, body string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + s.cfg.NomeRemetente + " <" + from + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	if err := client.Quit(); err != nil {
		return err
	}

	s.log.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func renderTemplate(tipo, nome string, data map[string]string) (subject, body string) {
	switch tipo {
	case models.EmailBoasVindas:
		return "Bem-vindo à Vitrine do Vendedor!",
			fmt.Sprintf("Olá, %s!\n\nSua conta foi criada com sucesso. Escolha um plano e monte sua vitrine de motos em minutos.", nome)
	case models.EmailRecuperacaoSenha:
		return "Recuperação de senha",
			fmt.Sprintf("Olá, %s!\n\nRecebemos um pedido para redefinir sua senha. Use o código abaixo para criar uma nova:\n\n%s\n\nSe você não fez esse pedido, ignore este email.", nome, data["reset_token"])
	case models.EmailConfirmacaoPagamento:
		return "Pagamento confirmado",
			fmt.Sprintf("Olá, %s!\n\nSeu pagamento de R$ %s foi aprovado. Sua vitrine está ativa.", nome, data["valor"])
	case models.EmailLembreteVencimento:
		return "Sua assinatura vence em breve",
			fmt.Sprintf("Olá, %s!\n\nSua assinatura do plano %s vence em breve. Renove para manter sua vitrine no ar.", nome, data["plano"])
	case models.EmailPagamentoAtrasado:
		return "Pagamento pendente",
			fmt.Sprintf("Olá, %s!\n\nNão identificamos o pagamento da sua assinatura do plano %s. Renove para evitar o bloqueio da sua vitrine.", nome, data["plano"])
	case models.EmailVitrineBloqueada:
		return "Sua vitrine foi bloqueada",
			fmt.Sprintf("Olá, %s!\n\nSua vitrine foi bloqueada por falta de pagamento. Renove sua assinatura para reativá-la.", nome)
	case models.EmailVitrineReativada:
		return "Sua vitrine está no ar novamente",
			fmt.Sprintf("Olá, %s!\n\nPagamento confirmado e vitrine reativada. Boas vendas!", nome)
	case models.EmailCancelamento:
		return "Assinatura cancelada",
			fmt.Sprintf("Olá, %s!\n\nSua assinatura foi cancelada. Sentiremos sua falta; você pode voltar quando quiser.", nome)
	default:
		return "Notificação da Vitrine do Vendedor", fmt.Sprintf("Olá, %s!", nome)
	}
}
