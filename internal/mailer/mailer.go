// Package mailer is the SMTP collaborator used for notifications and
// onboarding credentials.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/atelierhq/atelier-api/internal/config"
)

// Mailer sends an HTML email. Services depend on this interface so tests can
// substitute a fake.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     from,
	}
}

// Send sends an HTML email with the given subject and body.
func (s *SMTPMailer) Send(to, subject, htmlBody string) error {
	if s.host == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("missing SMTP configuration")
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"utf-8\"\r\n"+
			"\r\n%s\r\n",
		s.from, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

// CredentialsEmail renders the onboarding credentials message.
func CredentialsEmail(name, company, email, password string) (subject, body string) {
	subject = "Your Atelier account credentials"
	body = fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>An account has been created for %s on the Atelier project portal.</p>
		<p>Login email: <strong>%s</strong><br>
		Temporary password: <strong>%s</strong></p>
		<p>Please sign in and change your password.</p>`,
		name, company, email, password)
	return subject, body
}

// QuotationEmail renders the quotation notification sent to a project's client.
func QuotationEmail(clientName, projectName string) (subject, body string) {
	subject = fmt.Sprintf("Quotation ready for %s", projectName)
	body = fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>A quotation has been submitted for your project <strong>%s</strong>.</p>
		<p>Please sign in to review and accept or reject it.</p>`,
		clientName, projectName)
	return subject, body
}
