package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"
)

// Attachment is a file attached to an outgoing message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a plain-text email with optional attachments
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// NewMailer returns an SMTP mailer when SMTP is configured and a logging
// mailer otherwise.
func NewMailer(cfg *config.Config) Mailer {
	if !cfg.SMTPConfigured() {
		logging.Warn().Msg("SMTP not configured, emails will be logged instead of sent")
		return &LogMailer{}
	}
	return NewSMTPMailer(SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPUseTLS,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		Timeout:  cfg.MailTimeout,
	})
}

// SMTPSettings configures SMTPMailer
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
	FromName string
	Timeout  time.Duration
}

// SMTPMailer sends mail through an SMTP relay behind a circuit breaker
type SMTPMailer struct {
	settings SMTPSettings
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

func NewSMTPMailer(settings SMTPSettings) *SMTPMailer {
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("mail circuit breaker state changed")
			if to == gobreaker.StateOpen {
				metrics.MailCircuitOpen.Set(1)
			} else {
				metrics.MailCircuitOpen.Set(0)
			}
		},
	})
	return &SMTPMailer{settings: settings, breaker: breaker}
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	built, err := m.build(msg)
	if err != nil {
		return err
	}
	_, err = m.breaker.Execute(func() (struct{}, error) {
		client, err := m.client()
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, client.DialAndSendWithContext(ctx, built)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("mail transport unavailable: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.settings.Port),
		mail.WithTimeout(m.settings.Timeout),
	}
	if m.settings.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.settings.Username),
			mail.WithPassword(m.settings.Password),
		)
	}
	return mail.NewClient(m.settings.Host, opts...)
}

func (m *SMTPMailer) build(msg *Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(m.settings.FromName, m.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, a := range msg.Attachments {
		err := out.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return out, nil
}

// LogMailer logs messages instead of sending them
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg *Message) error {
	event := logging.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body)
	for _, a := range msg.Attachments {
		event = event.Str("attachment", a.Filename).Int("attachment_bytes", len(a.Data))
	}
	event.Msg("SMTP not configured, logging email")
	return nil
}
