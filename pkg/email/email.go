package email

import (
	"fmt"
	"net"
	"net/smtp"

	"github.com/sirupsen/logrus"
)

// Config holds SMTP settings. An empty Host disables delivery.
type Config struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends plain text emails over SMTP.
type Mailer struct {
	cfg  Config
	send sendFunc
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// SendEmail sends a plain text email using SMTP. Without a configured host the
// message is logged instead, which keeps local development usable.
func (m *Mailer) SendEmail(to, subject, body string) error {
	if m.cfg.Host == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, email not sent: " + body)
		return nil
	}

	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)

	msg := []byte("From: " + m.cfg.Sender + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	if err := m.send(address, auth, m.cfg.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
