package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/mld/backend/internal/domain/shared"
)

// Config holds SMTP settings for outbound notifications.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	CC       string
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: smtp host is required", shared.ErrInvalidInput)
	}
	if c.From == "" {
		return fmt.Errorf("%w: smtp from address is required", shared.ErrInvalidInput)
	}
	if c.Port <= 0 {
		c.Port = 587
	}
	return nil
}

// Mailer sends HTML notification mail over SMTP.
type Mailer struct {
	config *Config
	client *mail.Client
}

// NewMailer creates a mailer with the given configuration.
func NewMailer(config *Config) (*Mailer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &Mailer{config: config, client: client}, nil
}

// DefaultRecipient returns the configured notification recipient.
func (m *Mailer) DefaultRecipient() string {
	return m.config.To
}

// Send delivers one HTML mail. The configured CC address, when set, is
// copied on every message.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("%w: mail recipient is required", shared.ErrInvalidInput)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	if m.config.CC != "" {
		if err := msg.Cc(m.config.CC); err != nil {
			return fmt.Errorf("invalid cc address: %w", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: mail delivery failed: %v", shared.ErrExternalService, err)
	}
	return nil
}
