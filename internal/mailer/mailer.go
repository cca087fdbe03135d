// Package mailer sends the account confirmation email. Handlers depend on
// the Mailer interface so tests can substitute a fake.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
)

// Mailer delivers a confirmation link for the given address.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, username, confirmURL string) error
}

const confirmationSubject = "Confirm your email"

var confirmationBody = template.Must(template.New("confirmation").Parse(`<html>
<body>
<p>Hello {{.Username}},</p>
<p>To finish setting up your address book, please confirm your email:</p>
<p><a href="{{.ConfirmURL}}">Confirm email</a></p>
<p>If you did not register, ignore this message.</p>
</body>
</html>
`))

// SMTPMailer sends mail over implicit-TLS SMTP.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTP creates a mailer for the given SMTP account.
func NewSMTP(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Enabled reports whether an SMTP host was configured.
func (m *SMTPMailer) Enabled() bool {
	return m.host != ""
}

// SendConfirmation renders the confirmation template and delivers it.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, email, username, confirmURL string) error {
	var body bytes.Buffer
	data := struct {
		Username   string
		ConfirmURL string
	}{Username: username, ConfirmURL: confirmURL}
	if err := confirmationBody.Execute(&body, data); err != nil {
		return fmt.Errorf("render confirmation mail: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + email,
		"Subject: " + confirmationSubject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="utf-8"`,
		"",
		body.String(),
	}, "\r\n")

	return m.send(ctx, email, []byte(msg))
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)
	dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: &tls.Config{ServerName: m.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

// NoopMailer is used when SMTP is not configured; sends succeed silently.
type NoopMailer struct{}

func (NoopMailer) SendConfirmation(context.Context, string, string, string) error { return nil }
