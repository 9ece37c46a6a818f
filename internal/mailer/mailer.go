package mailer

import (
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/realtruedate/backend/internal/config"
)

// Mailer is the email-delivery collaborator; tests use a fake.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	cfg *config.Config
}

func NewSMTP(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.SMTP.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.cfg.SMTP.Host,
		gomail.WithPort(m.cfg.SMTP.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.SMTP.User),
		gomail.WithPassword(m.cfg.SMTP.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to build smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// OTPBody renders the plain-text verification mail.
func OTPBody(code string) string {
	return fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
}
