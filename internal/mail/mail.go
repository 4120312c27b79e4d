// Package mail delivers invoices over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/dajohi/goemail"
	"github.com/diewo77/invoice-cli/internal/models"
)

// Message is one email to send.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var errNoRecipients = errors.New("no recipients")

// SMTP sends through the server described by an EmailConfig.
type SMTP struct {
	client  *goemail.SMTP
	address string
	name    string
}

// NewSMTP builds a sender from the saved settings. FromName may be a bare
// display name or a full "Name <addr>" address; without an address the
// username is used.
func NewSMTP(cfg models.EmailConfig) (*SMTP, error) {
	if strings.TrimSpace(cfg.SMTPServer) == "" {
		return nil, fmt.Errorf("smtp server: %w", models.ErrValidation)
	}
	u, err := ServerURL(cfg)
	if err != nil {
		return nil, err
	}
	client, err := goemail.NewSMTP(u, &tls.Config{ServerName: cfg.SMTPServer})
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w: %v", models.ErrExternal, err)
	}
	address, name := From(cfg)
	return &SMTP{client: client, address: address, name: name}, nil
}

// ServerURL renders the settings as the smtp:// or smtps:// URL goemail
// expects.
func ServerURL(cfg models.EmailConfig) (string, error) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return "", fmt.Errorf("smtp port %d: %w", cfg.Port, models.ErrValidation)
	}
	scheme := "smtp"
	if cfg.TLS {
		scheme = "smtps"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(cfg.SMTPServer, strconv.Itoa(cfg.Port)),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String(), nil
}

// From returns the envelope address and display name.
func From(cfg models.EmailConfig) (address, name string) {
	if a, err := netmail.ParseAddress(cfg.FromName); err == nil {
		return a.Address, a.Name
	}
	return cfg.Username, cfg.FromName
}

// Send delivers msg. Recipients are blind-copied so clients on a shared
// address list do not see each other.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("send %q: %w: %v", msg.Subject, models.ErrValidation, errNoRecipients)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := goemail.NewMessage(s.address, msg.Subject, msg.Body)
	if s.name != "" {
		m.SetName(s.name)
	}
	for _, to := range msg.To {
		m.AddBCC(to)
	}
	if err := s.client.Send(m); err != nil {
		return fmt.Errorf("send %q: %w: %v", msg.Subject, models.ErrExternal, err)
	}
	return nil
}
