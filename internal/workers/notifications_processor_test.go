package workers_test

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
	"github.com/ammerola/pharmacy-be/internal/workers"
	"github.com/ammerola/pharmacy-be/test/helpers"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func emailTask(t *testing.T, to string) *asynq.Task {
	t.Helper()
	task, err := ports.NewTask(ports.TypeSendEmail, ports.EmailPayload{
		To:      to,
		Subject: "Low stock",
		Body:    "batch B1: 2 left",
	})
	require.NoError(t, err)
	return task
}

func TestNotificationProcessor_SendEmail(t *testing.T) {
	smtpConfig := config.NotificationConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     2525,
		SMTPUsername: "mailer",
		SMTPPassword: "secret",
		FromAddress:  "noreply@pharmacy.local",
	}

	t.Run("sends_through_relay", func(t *testing.T) {
		var sent []sentMail
		p := workers.NewNotificationProcessor(smtpConfig, "production", helpers.TestLogger()).
			WithSender(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
				sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
				return nil
			})

		require.NoError(t, p.SendEmail(context.Background(), emailTask(t, "pharmacist@example.com")))

		require.Len(t, sent, 1)
		assert.Equal(t, "smtp.example.com:2525", sent[0].addr)
		assert.Equal(t, "noreply@pharmacy.local", sent[0].from)
		assert.Equal(t, []string{"pharmacist@example.com"}, sent[0].to)
		assert.Contains(t, sent[0].msg, "Subject: Low stock\r\n")
		assert.Contains(t, sent[0].msg, "batch B1: 2 left")
	})

	t.Run("development_only_logs", func(t *testing.T) {
		p := workers.NewNotificationProcessor(smtpConfig, "development", helpers.TestLogger()).
			WithSender(func(string, smtp.Auth, string, []string, []byte) error {
				t.Fatal("sender must not be called in development")
				return nil
			})

		assert.NoError(t, p.SendEmail(context.Background(), emailTask(t, "pharmacist@example.com")))
	})

	t.Run("no_relay_configured", func(t *testing.T) {
		p := workers.NewNotificationProcessor(config.NotificationConfig{}, "production", helpers.TestLogger()).
			WithSender(func(string, smtp.Auth, string, []string, []byte) error {
				t.Fatal("sender must not be called without a relay")
				return nil
			})

		assert.NoError(t, p.SendEmail(context.Background(), emailTask(t, "pharmacist@example.com")))
	})

	t.Run("relay_failure_is_retried", func(t *testing.T) {
		p := workers.NewNotificationProcessor(smtpConfig, "production", helpers.TestLogger()).
			WithSender(func(string, smtp.Auth, string, []string, []byte) error {
				return errors.New("421 service not available")
			})

		err := p.SendEmail(context.Background(), emailTask(t, "pharmacist@example.com"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("missing_recipient", func(t *testing.T) {
		p := workers.NewNotificationProcessor(smtpConfig, "production", helpers.TestLogger())

		err := p.SendEmail(context.Background(), emailTask(t, ""))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}
