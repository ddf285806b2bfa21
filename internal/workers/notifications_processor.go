// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

// MailSender delivers a message. smtp.SendMail satisfies it.
type MailSender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationProcessor handles email notifications
type NotificationProcessor struct {
	config      config.NotificationConfig
	environment string
	send        MailSender
	logger      *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(cfg config.NotificationConfig, environment string, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		config:      cfg,
		environment: environment,
		send:        smtp.SendMail,
		logger:      logger.With(slog.String("processor", "notification")),
	}
}

// WithSender replaces the SMTP transport
func (p *NotificationProcessor) WithSender(send MailSender) *NotificationProcessor {
	p.send = send
	return p
}

// SendEmail sends email notifications
func (p *NotificationProcessor) SendEmail(ctx context.Context, t *asynq.Task) error {
	var payload ports.EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email has no recipient: %w", asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "sending email",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject))

	// In development, or without a relay, just log the email
	if p.environment == "development" || p.config.SMTPHost == "" {
		p.logger.InfoContext(ctx, "email would be sent",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject),
			slog.String("body", payload.Body))
		return nil
	}

	from := p.config.FromAddress
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, payload.To, payload.Subject, payload.Body,
	))

	var auth smtp.Auth
	if p.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", p.config.SMTPUsername, p.config.SMTPPassword, p.config.SMTPHost)
	}
	addr := p.config.SMTPHost + ":" + strconv.Itoa(p.config.SMTPPort)

	if err := p.send(addr, auth, from, []string{payload.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.InfoContext(ctx, "email sent successfully", slog.String("to", payload.To))
	return nil
}
