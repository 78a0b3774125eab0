package digest

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	// From is the SMTP envelope sender (MAIL FROM). Raw mailbox address.
	From string
	// FromName is an optional display name used only for the message header.
	FromName string
}

// SMTPSender delivers digest emails over SMTP with PLAIN auth when
// credentials are configured.
type SMTPSender struct {
	config SMTPConfig
	auth   smtp.Auth

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if config.User != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}
	return &SMTPSender{
		config: config,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// SendDigest delivers the rendered HTML body to the recipient. A non-nil
// error means delivery did not happen and the records must stay unsent.
func (s *SMTPSender) SendDigest(ctx context.Context, recipient, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)

	fromHeader := s.config.From
	if strings.TrimSpace(s.config.FromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []string{
		fmt.Sprintf("From: %s", sanitizeHeader(fromHeader)),
		fmt.Sprintf("To: %s", sanitizeHeader(recipient)),
		fmt.Sprintf("Subject: %s", sanitizeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}
	body := []byte(strings.Join(msg, "\r\n"))

	if err := s.send(addr, s.auth, s.config.From, []string{recipient}, body); err != nil {
		return fmt.Errorf("send digest to %s: %w", recipient, err)
	}
	return nil
}

// sanitizeHeader strips CR/LF so untrusted values cannot inject headers.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", "")
	v = strings.ReplaceAll(v, "\n", "")
	return v
}
