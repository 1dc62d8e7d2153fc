package config

import (
	"os"
	"strconv"
)

// EmailConfig holds outbound mail configuration
type EmailConfig struct {
	// Transport selects how mail leaves the process: "smtp" sends directly,
	// "amqp" publishes to the email.events exchange for an external worker.
	Transport string

	FromEmail string
	FromName  string

	// Base URL used to build verification/reset links
	BaseURL string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// LoadEmailConfig loads email configuration from environment
func LoadEmailConfig() *EmailConfig {
	cfg := &EmailConfig{
		Transport: GetString("EMAIL_TRANSPORT", "smtp"),
		FromEmail: GetString("EMAIL_FROM", "noreply@example.com"),
		FromName:  GetString("EMAIL_FROM_NAME", "City Press"),
		BaseURL:   GetString("BASE_URL", "http://localhost:8080"),
	}

	if cfg.Transport == "smtp" {
		cfg.SMTPHost = GetString("SMTP_HOST", "smtp.gmail.com")
		portStr := os.Getenv("SMTP_PORT")
		if portStr == "" {
			cfg.SMTPPort = 587
		} else {
			if port, err := strconv.Atoi(portStr); err == nil {
				cfg.SMTPPort = port
			} else {
				cfg.SMTPPort = 587
			}
		}
		cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
		cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	}

	return cfg
}
