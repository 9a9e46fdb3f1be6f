package services

import (
	"crypto/tls"
	"fmt"

	"github.com/gahan/book-inventory-backend/internal/config"
	"github.com/gahan/book-inventory-backend/internal/models"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

// SendActivationEmail mails the activation link to the new user. The
// operator address is copied on every registration so sign-ups are visible
// without a dashboard.
func (s *EmailService) SendActivationEmail(user *models.User, token string) error {
	activationLink := fmt.Sprintf("%s/api/v1/auth/activate/%d/%s", s.config.BaseURL, user.ID, token)

	recipients := []string{user.Email}
	if s.config.OperatorEmail != "" {
		recipients = append(recipients, s.config.OperatorEmail)
	}

	subject := "Activate Your Account"
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created but is not active yet.</p>
		<p>Click the link below to activate it:</p>
		<p><a href="%s">%s</a></p>
		<p>The link expires after %d days. If you did not register, ignore this email.</p>
		<p>Best regards,<br>The Book Inventory Team</p>
	`, user.Username, activationLink, activationLink, int(s.config.ActivationTimeout.Hours()/24))

	return s.SendEmail(recipients, subject, body)
}

func (s *EmailService) SendPasswordChangedEmail(user *models.User) error {
	subject := "Your Password Was Changed"
	body := fmt.Sprintf(`
		<h2>Password Changed</h2>
		<p>Hello %s,</p>
		<p>The password for your account was just changed.</p>
		<p>If this was not you, contact the operator immediately.</p>
	`, user.Username)

	return s.SendEmail([]string{user.Email}, subject, body)
}
