package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/citypress/account-service/app/config"
)

// SMTPTransport sends mail directly over SMTP with PLAIN auth.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewSMTPTransport creates a new SMTP transport
func NewSMTPTransport(cfg *config.EmailConfig) (*SMTPTransport, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD are required")
	}

	return &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
	}, nil
}

// Send sends an email via SMTP. smtp.SendMail dials, authenticates, and closes
// the connection on every exit path, so each send holds the connection only
// for its own lifetime.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	auth := smtp.PlainAuth("", t.username, t.password, t.host)

	fromHeader := fmt.Sprintf("%s <%s>", t.fromName, t.from)
	to := []string{msg.To}

	raw := []byte(fmt.Sprintf("From: %s\r\n", fromHeader) +
		fmt.Sprintf("To: %s\r\n", msg.To) +
		fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		msg.Body + "\r\n")

	if err := smtp.SendMail(addr, auth, t.from, to, raw); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	return nil
}

// Name returns the transport name
func (t *SMTPTransport) Name() string {
	return "smtp"
}
