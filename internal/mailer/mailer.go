package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/config"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, username, token string) error
}

type SendGridMailer struct {
	client   *sendgrid.Client
	from     *mail.Email
	resetURL string
	resetTTL time.Duration
}

// NewSendGridMailer sends reset links valid for resetTTL.
func NewSendGridMailer(cfg config.Mail, resetTTL time.Duration) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(cfg.SendGridKey),
		from:     mail.NewEmail(cfg.FromName, cfg.FromAddress),
		resetURL: cfg.ResetURL,
		resetTTL: resetTTL,
	}
}

func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to, username, token string) error {
	message := buildResetMessage(m.from, m.resetURL, m.resetTTL, to, username, token)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("send reset email: sendgrid status %d", response.StatusCode)
	}
	return nil
}

func resetLink(base, token string) string {
	return base + "?token=" + url.QueryEscape(token)
}

// describeTTL renders a lifetime for the mail body, e.g. "1 hour" or "30 minutes".
func describeTTL(d time.Duration) string {
	unit, n := "minute", int64(d/time.Minute)
	if d >= time.Hour && d%time.Hour == 0 {
		unit, n = "hour", int64(d/time.Hour)
	}
	if n < 1 {
		return d.String()
	}
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func buildResetMessage(from *mail.Email, base string, ttl time.Duration, to, username, token string) *mail.SGMailV3 {
	link := resetLink(base, token)
	subject := "Reset your password"
	recipient := mail.NewEmail(username, to)
	expiry := describeTTL(ttl)

	plain := fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n", username, expiry, link)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Use the link below to choose a new password. It expires in %s.</p><p><a href=\"%s\">Reset password</a></p>", username, expiry, link)

	return mail.NewSingleEmail(from, subject, recipient, plain, html)
}

// LogMailer is used when no SendGrid key is configured. It records that a
// reset was requested without logging the token.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) SendPasswordReset(_ context.Context, to, username, _ string) error {
	m.Log.WithFields(logrus.Fields{
		"to":       to,
		"username": username,
	}).Info("password reset email skipped: mail delivery not configured")
	return nil
}

// New picks SendGrid when a key is configured.
func New(cfg config.Mail, resetTTL time.Duration, log logrus.FieldLogger) Mailer {
	if cfg.SendGridKey == "" {
		return LogMailer{Log: log}
	}
	return NewSendGridMailer(cfg, resetTTL)
}
