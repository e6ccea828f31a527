package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailService sends transactional mail. Receipt delivery is best-effort:
// a failure here never rolls back the donation or its distribution.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService reads SMTP configuration from the environment.
func NewEmailService() *EmailService {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	svc := &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}

	if svc.host == "" {
		log.Println("Warning: SMTP_HOST not set, receipt emails are disabled")
	}

	return svc
}

// SendDonationReceipt emails a plain receipt for a successful donation.
func (s *EmailService) SendDonationReceipt(to, donorName string, amount int64, currency, receipt string) error {
	if s.host == "" || to == "" {
		return nil
	}

	name := donorName
	if name == "" {
		name = "Donor"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Donation receipt %s", receipt))
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nThank you for your donation of %s %.2f.\nYour receipt number is %s.\n\nWith gratitude,\nDaanSetu",
		name, currency, float64(amount)/100, receipt,
	))

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}
