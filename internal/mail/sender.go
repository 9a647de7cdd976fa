// Package mail renders and delivers alert emails over SMTP, with a
// log-only mock mode for development.
package mail

import (
	stderrors "errors"
	"log"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// Send failure classes, mapped to HTTP statuses by the instant-alert
// endpoint.
var (
	ErrNotConfigured = stderrors.New("email transport not configured")
	ErrAuth          = stderrors.New("email authentication failed")
	ErrNetwork       = stderrors.New("email network failure")
	ErrSend          = stderrors.New("email send failed")
)

// Sender delivers HTML email. In mock mode Send logs and succeeds,
// contract-identical to a real delivery.
type Sender struct {
	host string
	port int
	user string
	pass string
	from string
	mock bool

	// dial is swapped in tests.
	dial func(m *gomail.Message) error
}

func NewSender(host string, port int, user, pass, from string, mock bool) *Sender {
	s := &Sender{host: host, port: port, user: user, pass: pass, from: from, mock: mock}
	s.dial = s.smtpSend
	return s
}

// Send delivers an HTML message to one recipient.
func (s *Sender) Send(to, subject, htmlBody string) error {
	if s.mock {
		log.Printf("mail: mock send to=%s subject=%q (%d bytes)", to, subject, len(htmlBody))
		return nil
	}
	if s.host == "" || s.from == "" {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dial(m); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Sender) smtpSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	return d.DialAndSend(m)
}

// classify folds raw SMTP errors into the sender's error classes.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "535"):
		return ErrAuth
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "network"):
		return ErrNetwork
	default:
		log.Printf("mail: send failed: %v", err)
		return ErrSend
	}
}
