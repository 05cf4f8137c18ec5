// Package mailx delivers transactional email.
package mailx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound email. HTML is optional; Text is always sent.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("mailx: message has no recipient")

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Insecure skips TLS verification, for local relays like MailHog.
	Insecure bool
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPMailer returns a mailer that dials the relay once per message.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Insecure {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
	}
	return &SMTPMailer{from: cfg.From, dialer: d}
}

// Send delivers msg. gomail has no context support, so cancellation is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("mailx: smtp send: %w", err)
	}
	return nil
}

// LogMailer writes messages to a logger instead of sending them. Used when no
// SMTP relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	l := m.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "mail not sent: no smtp relay configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	// Bodies can carry secrets such as reset links.
	l.DebugContext(ctx, "unsent mail body", slog.String("body", msg.Text))
	return nil
}
