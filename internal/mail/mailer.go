package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/eventhub/internal/config"
)

// Mailer hands composed messages to a transport. Delivery is best-effort;
// callers treat a returned error as loggable, never fatal.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer returns an SMTP-backed mailer when a host is configured and a
// log-only mailer otherwise.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Warn("MAIL_SMTP_HOST not provided; outbound mail will be logged only")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.MailConfig
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(to, subject, body string) error {
	m.logger.Info("mail (transport disabled)",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
