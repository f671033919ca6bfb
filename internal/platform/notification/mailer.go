package notification

import (
	"context"
	"fmt"
	"sync"

	gomail "gopkg.in/gomail.v2"
)

// Settings holds the SMTP connection parameters. They are stored by the
// admin module and can change at runtime.
type Settings struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	UseTLS      bool
}

// Valid reports whether the settings are usable for sending mail.
func (s Settings) Valid() bool {
	return s.Host != "" && s.Port > 0 && s.FromAddress != ""
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages over some transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends messages through an SMTP server using gomail.
type SMTPMailer struct {
	settings Settings
}

// NewSMTPMailer creates a mailer for the given SMTP settings.
func NewSMTPMailer(settings Settings) *SMTPMailer {
	return &SMTPMailer{settings: settings}
}

// Send delivers the message, honouring context cancellation while the
// dial and send run.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.settings.Valid() {
		return fmt.Errorf("smtp settings are incomplete")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.settings.FromAddress)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	dialer := gomail.NewDialer(m.settings.Host, m.settings.Port, m.settings.Username, m.settings.Password)
	dialer.SSL = m.settings.UseTLS

	done := make(chan error, 1)
	go func() { done <- dialer.DialAndSend(gm) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", msg.To, err)
		}
		return nil
	}
}

// MockMailer records sent messages for tests.
type MockMailer struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (m *MockMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.Messages))
	copy(out, m.Messages)
	return out
}
