package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the slice of *amqp.Channel the transport needs.
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPTransport hands mail off to the email.events exchange for an external
// worker to deliver. The publish itself is still a blocking inline call; a
// broker error surfaces to the caller like any other send failure.
type AMQPTransport struct {
	ch AMQPChannel
}

func NewAMQPTransport(ch AMQPChannel) (*AMQPTransport, error) {
	if ch == nil {
		return nil, fmt.Errorf("amqp channel is required")
	}
	return &AMQPTransport{ch: ch}, nil
}

type outboundMailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (t *AMQPTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(outboundMailMessage{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
	if err != nil {
		return err
	}

	headers := make(amqp.Table)
	if requestID, ok := ctx.Value("request_id").(string); ok && requestID != "" {
		headers["X-Request-ID"] = requestID
	}

	return t.ch.PublishWithContext(
		ctx,
		"email.events",   // exchange
		"email.outbound", // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Headers:     headers,
		},
	)
}

func (t *AMQPTransport) Name() string {
	return "amqp"
}
