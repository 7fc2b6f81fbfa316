package service

import (
	"context"
	"fmt"

	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "Bicicletário"

// Sender delivers a stored e-mail.
type Sender interface {
	Send(ctx context.Context, email *model.Email) error
}

type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *SendGridSender) Send(ctx context.Context, email *model.Email) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(senderName, s.from),
		email.Subject,
		mail.NewEmail("", email.To),
		email.Body,
		"",
	)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// LogSender writes e-mails to the log. Used when no SendGrid key is set.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, email *model.Email) error {
	s.log.Info("Email delivered to log",
		"id", email.ID,
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
