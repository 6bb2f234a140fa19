package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func welcomeMessage(from, to string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to the CRM")

	body := fmt.Sprintf(`
		<h2>Welcome aboard!</h2>
		<p>Your CRM account <strong>%s</strong> has been created.</p>
		<p>Sign in to start tracking your leads.</p>
	`, html.EscapeString(to))
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendWelcomeEmail(email string) error {
	if err := s.dialer.DialAndSend(welcomeMessage(s.from, email)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}
