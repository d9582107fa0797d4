package config

import (
	"crypto/tls"
	"fmt"
	"os"

	mail "github.com/go-mail/mail/v2"
)

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Hostel Desk <no-reply@your.org>"
	SkipTLSVerify bool
}

func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:          os.Getenv("SMTP_HOST"),
		Port:          getEnvInt("SMTP_PORT", 587),
		User:          os.Getenv("SMTP_USER"),
		Pass:          os.Getenv("SMTP_PASS"),
		From:          os.Getenv("SMTP_FROM"),
		SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

// SMTPMailer sends HTML mail over STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.SkipTLSVerify,
	}

	return d.DialAndSend(msg)
}
