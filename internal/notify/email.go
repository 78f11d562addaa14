// ABOUTME: Email delivery over SMTP with STARTTLS
// ABOUTME: Used to send KYC links when the customer has an email address

package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// EmailSender delivers plain-text mail through an SMTP relay.
type EmailSender struct {
	host     string
	port     int
	user     string
	password string
	logger   *slog.Logger
}

// NewEmailSender creates a sender for the SMTP relay.
func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		logger:   slog.Default().With("component", "email"),
	}
}

// Send delivers a plain-text message to the address.
func (e *EmailSender) Send(to, subject, body string) error {
	if e.host == "" || e.user == "" {
		return fmt.Errorf("smtp relay not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.user)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	if err := smtp.SendMail(addr, auth, e.user, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	e.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
