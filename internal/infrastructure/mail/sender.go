package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/claritykit/claritykit-backend/internal/pkg/config"
)

// Sender delivers a single rendered email.
type Sender interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// SMTPSender submits mail over plain SMTP with STARTTLS and auth.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(_ context.Context, recipient, subject, htmlBody string) error {
	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s",
		s.cfg.Sender, recipient, subject, htmlBody,
	)

	if err := smtp.SendMail(addr, auth, s.cfg.Sender, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender logs mail instead of delivering it. Used when no SMTP server is
// configured (development); it logs recipient addresses, so not for
// production.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, recipient, subject, _ string) error {
	s.log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Msg("email (log sender)")
	return nil
}
