package notifications

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender delivers plain-text mail over SMTP. Port 465 uses implicit
// TLS; other ports use STARTTLS via smtp.SendMail.
type EmailSender struct {
	config EmailConfig
}

func NewEmailSender(config EmailConfig) *EmailSender {
	return &EmailSender{config: config}
}

// Channel implements Sender.
func (s *EmailSender) Channel() string { return "EMAIL" }

// Send delivers one message to the recipient address.
func (s *EmailSender) Send(recipient, subject, body string) error {
	if s.config.Host == "" {
		return fmt.Errorf("smtp is not configured")
	}

	message := strings.Join([]string{
		"From: " + s.config.From,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if s.config.Port == 465 {
		return s.sendImplicitTLS(addr, auth, recipient, []byte(message))
	}
	return smtp.SendMail(addr, auth, s.config.From, []string{recipient}, []byte(message))
}

func (s *EmailSender) sendImplicitTLS(addr string, auth smtp.Auth, recipient string, message []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.config.From); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(message); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}
