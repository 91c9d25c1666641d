package mailer

import (
	"context"
	"fmt"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/ports"
)

// Mailgun sends notifications through the Mailgun HTTP API.
type Mailgun struct {
	client *mg.MailgunImpl
	sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), sender: sender}
}

// Send delivers n as a plain-text message.
func (m *Mailgun) Send(ctx context.Context, n ports.Notification) error {
	msg := m.client.NewMessage(m.sender, n.Subject, n.Text, n.To)
	if _, _, err := m.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}

// LogSender only logs notifications. Used when no mail provider is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n ports.Notification) error {
	s.log.Info().Str("to", n.To).Str("subject", n.Subject).Msg("mail delivery disabled, notification logged")
	return nil
}
