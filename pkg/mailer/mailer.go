package mailer

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/logger"
)

// Sender delivers transactional mail (password resets, email change links).
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer sends mail over SMTP. When SMTP is not configured, sends are logged
// and skipped so local development works without a mail server.
type Mailer struct {
	cfg    config.SMTPConfig
	client *gomail.Client
	logger *logger.Logger
}

// New builds a Mailer from the SMTP configuration.
func New(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	m := &Mailer{cfg: cfg, logger: logg}
	if !cfg.Configured() {
		return m, nil
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}
	m.client = client
	return m, nil
}

// Send delivers a single HTML message.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}

	if m.client == nil {
		if m.logger != nil {
			ctx = m.logger.WithFields(ctx, map[string]any{"subject": subject})
			m.logger.Warn(ctx, "smtp not configured, skipping mail send")
		}
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return fmt.Errorf("setting mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	if m.logger != nil {
		m.logger.Info(m.logger.WithFields(ctx, map[string]any{"subject": subject}), "mail sent")
	}
	return nil
}
