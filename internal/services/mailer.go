package services

import (
	"fmt"
	"net/smtp"

	"todo-sample/internal/config"
)

// Mailer はパスワードリセットメールを送信します。
type Mailer interface {
	SendPasswordReset(to, resetURL string) error
}

// SMTPMailer は SMTP サーバー経由でメールを送ります。
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPasswordReset(to, resetURL string) error {
	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password reset\r\n\r\nUse the following link to reset your password.\r\n%s\r\n",
		m.cfg.From, to, resetURL,
	))

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
