// Package mailer delivers account emails over SMTP with gomail.
package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender sends composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders and sends notification emails. Without a Sender it only
// logs what would have been sent.
type Mailer struct {
	from     string
	loginURL string
	sender   Sender
	log      zerolog.Logger
}

// New creates a Mailer from SMTP settings. An empty host disables delivery.
func New(cfg config.SMTPConfig, log zerolog.Logger) *Mailer {
	m := &Mailer{from: cfg.From, loginURL: cfg.FrontendLoginURL, log: log}
	if cfg.Host != "" {
		m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// WithSender replaces the SMTP dialer.
func (m *Mailer) WithSender(s Sender) *Mailer {
	m.sender = s
	return m
}

// SendOTP emails a one-time code.
func (m *Mailer) SendOTP(ctx context.Context, to, name, code string, purpose model.OTPPurpose) error {
	subject := "Your verification code"
	intro := "Use the code below to verify your email address."
	if purpose == model.OTPPurposePasswordReset {
		subject = "Your password reset code"
		intro = "Use the code below to reset your password."
	}
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>%s</p>
<h2 style="letter-spacing:4px">%s</h2>
<p>The code expires in %d minutes and can be used once.</p>`,
		html.EscapeString(greeting(name)), intro, html.EscapeString(code), int(model.OTPTTL.Minutes()))
	return m.send(ctx, to, subject, body)
}

// SendMentorApplication confirms a mentor application. It carries no credentials.
func (m *Mailer) SendMentorApplication(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Thank you for applying to become a mentor. Our team will review your application
and contact you once your account has been approved.</p>`, html.EscapeString(greeting(name)))
	return m.send(ctx, to, "We received your mentor application", body)
}

// SendStudentWelcome sends an imported student their temporary password.
func (m *Mailer) SendStudentWelcome(ctx context.Context, to, name, password string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>An account has been created for you.</p>
<p>Email: <b>%s</b><br>
Temporary password: <b>%s</b></p>
<p>You will be asked to choose a new password the first time you sign in at
<a href="%s">%s</a>.</p>`,
		html.EscapeString(greeting(name)), html.EscapeString(to), html.EscapeString(password),
		html.EscapeString(m.loginURL), html.EscapeString(m.loginURL))
	return m.send(ctx, to, "Welcome to the mentorship program", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.sender == nil {
		m.log.Warn().Str("to", to).Str("subject", subject).Msg("SMTP not configured, email not sent")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func greeting(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
