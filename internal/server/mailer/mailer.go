// Package mailer sends transactional email over SMTPS.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"

	"github.com/dajohi/goemail"

	"github.com/punit-mobi/RBAC-project/internal/logging"
)

// Options configures the SMTP connection. Mail is disabled when Host, User
// or Password is empty.
type Options struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	SkipVerify bool
}

type sender interface {
	Send(msg *goemail.Message) error
}

// SMTPMailer delivers HTML messages through goemail.
type SMTPMailer struct {
	client      sender
	mailName    string
	mailAddress string
	disabled    bool
	logger      logging.Logger
}

// New returns a mailer for opts. A disabled mailer logs and drops messages.
func New(opts Options, logger logging.Logger) (*SMTPMailer, error) {
	logger = logger.With("module", "mailer")

	if opts.Host == "" || opts.User == "" || opts.Password == "" {
		return &SMTPMailer{disabled: true, logger: logger}, nil
	}

	host := opts.Host
	if opts.Port > 0 {
		host = host + ":" + strconv.Itoa(opts.Port)
	}
	u := &url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(opts.User, opts.Password),
		Host:   host,
	}

	a, err := mail.ParseAddress(opts.From)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}

	client, err := goemail.NewSMTP(u.String(), &tls.Config{InsecureSkipVerify: opts.SkipVerify})
	if err != nil {
		return nil, fmt.Errorf("smtp setup: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
		logger:      logger,
	}, nil
}

// Disabled reports whether messages are dropped.
func (m *SMTPMailer) Disabled() bool { return m.disabled }

// SendHTML sends an HTML message to a single recipient.
func (m *SMTPMailer) SendHTML(ctx context.Context, to, subject, body string) error {
	if m.disabled {
		m.logger.Info(ctx, "email is disabled; skipping send", "to", to, "subject", subject)
		return nil
	}

	msg := goemail.NewHTMLMessage(m.mailAddress, subject, body)
	msg.SetName(m.mailName)
	msg.AddTo(to)

	if err := m.client.Send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Debug(ctx, "email sent", "to", to, "subject", subject)
	return nil
}
