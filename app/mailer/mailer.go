package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/citypress/account-service/app/circuitbreaker"
	"github.com/citypress/account-service/app/config"
)

// Message is one outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string // HTML body
}

// Transport delivers a rendered message. Implementations: direct SMTP, or an
// AMQP publish for an external mail worker.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// Sender renders the account mail templates and pushes them through the
// configured transport behind a circuit breaker. Delivery failure is the
// caller's problem to log; Sender never retries.
type Sender struct {
	transport Transport
	cfg       *config.EmailConfig
	breaker   *circuitbreaker.CircuitBreaker
}

// NewSender builds a Sender for the transport named in cfg.Transport.
func NewSender(cfg *config.EmailConfig, amqpCh AMQPChannel) (*Sender, error) {
	var transport Transport
	var err error

	switch cfg.Transport {
	case "smtp":
		transport, err = NewSMTPTransport(cfg)
	case "amqp":
		transport, err = NewAMQPTransport(amqpCh)
	default:
		return nil, fmt.Errorf("unsupported email transport: %s", cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email transport: %w", err)
	}

	return &Sender{
		transport: transport,
		cfg:       cfg,
		breaker:   circuitbreaker.NewCircuitBreaker(5, 30*time.Second, 2),
	}, nil
}

// SendVerificationEmail sends the email-ownership verification link.
func (s *Sender) SendVerificationEmail(ctx context.Context, to, url string) error {
	body, err := RenderVerificationTemplate(to, url)
	if err != nil {
		return fmt.Errorf("render verification template: %w", err)
	}
	return s.send(ctx, &Message{
		To:      to,
		Subject: "Verify your email address",
		Body:    body,
	})
}

// SendPasswordResetEmail sends the password reset link.
func (s *Sender) SendPasswordResetEmail(ctx context.Context, to, url string) error {
	body, err := RenderPasswordResetTemplate(to, url)
	if err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}
	return s.send(ctx, &Message{
		To:      to,
		Subject: "Reset your password",
		Body:    body,
	})
}

func (s *Sender) send(ctx context.Context, msg *Message) error {
	err := s.breaker.Call(ctx, func() error {
		return s.transport.Send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("send via %s: %w", s.transport.Name(), err)
	}
	return nil
}

// TransportName returns the name of the active transport.
func (s *Sender) TransportName() string {
	if s.transport == nil {
		return "unknown"
	}
	return s.transport.Name()
}
