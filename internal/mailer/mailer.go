// Package mailer delivers outbound email.  The queue consumer only depends
// on the Sender interface so tests can swap in a recording fake.
package mailer

import (
	"log"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, html string) error
}

// SMTPSender sends mail through an SMTP relay configured via environment
// variables: SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSenderFromEnv returns an SMTPSender when SMTP_HOST is configured.
// Without it, outbound mail degrades to a log-only sender so the rest of
// the service keeps working in development environments.
func NewSenderFromEnv() Sender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("mailer: SMTP_HOST not set, verification emails will only be logged")
		return LogSender{}
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	return &SMTPSender{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

func (s *SMTPSender) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	return d.DialAndSend(m)
}

// LogSender writes the message to the application log instead of sending
// it. Used when no SMTP relay is configured.
type LogSender struct{}

func (LogSender) Send(to, subject, html string) error {
	log.Printf("mailer: (dry-run) to=%s subject=%q body=%s", to, subject, html)
	return nil
}
