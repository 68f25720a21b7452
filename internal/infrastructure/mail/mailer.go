// Package mail sends outgoing notification emails over SMTP.
package mail

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/richland-auto/inventory-api/pkg/config"
)

// Mailer wraps SMTP configuration for sending plain-text notifications.
type Mailer struct {
	host     string
	from     string
	user     string
	password string
	addr     string
}

// NewMailer builds the mailer from SMTP settings.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		from:     cfg.From,
		user:     cfg.Username,
		password: cfg.Password,
		addr:     cfg.Addr(),
	}
}

// Send delivers a plain-text email to the recipients.
func (m *Mailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
