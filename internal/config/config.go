package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	JWTSecret string
	Port      string
	Env       string
	BaseURL   string

	QRDir         string
	ProofDir      string
	MaxUploadSize int64
	LogLevel      string

	// Race-pack claim passwords, checked server-side only.
	ClaimSelfPassword  string
	ClaimStaffPassword string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	MailEnabled bool
}

func NewConfigFromEnv() (*Config, error) {
	maxUploadSize, _ := strconv.ParseInt(getenv("MAX_UPLOAD_SIZE", "10485760"), 10, 64)
	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	mailEnabled, _ := strconv.ParseBool(getenv("MAIL_ENABLED", "true"))

	cfg := &Config{
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "5432"),
		DBUser:    getenv("DB_USER", "postgres"),
		DBPass:    getenv("DB_PASSWORD", "postgres"),
		DBName:    getenv("DB_NAME", "charityrundb"),
		DBSSLMode: getenv("DB_SSLMODE", "disable"),

		JWTSecret: getenv("JWT_SECRET", ""),
		Port:      getenv("PORT", "3000"),
		Env:       getenv("ENV", "development"),
		BaseURL:   getenv("BASE_URL", "http://localhost:3000"),

		QRDir:         getenv("QR_DIR", "./uploads/qrcodes"),
		ProofDir:      getenv("PROOF_DIR", "./uploads/proofs"),
		MaxUploadSize: maxUploadSize,
		LogLevel:      getenv("LOG_LEVEL", "info"),

		ClaimSelfPassword:  getenv("CLAIM_SELF_PASSWORD", ""),
		ClaimStaffPassword: getenv("CLAIM_STAFF_PASSWORD", ""),

		SMTPHost:    getenv("SMTP_HOST", "localhost"),
		SMTPPort:    smtpPort,
		SMTPUser:    getenv("SMTP_USER", ""),
		SMTPPass:    getenv("SMTP_PASSWORD", ""),
		MailFrom:    getenv("MAIL_FROM", "no-reply@charityrun.local"),
		MailEnabled: mailEnabled,
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.ClaimSelfPassword == "" || cfg.ClaimStaffPassword == "" {
		return nil, errors.New("CLAIM_SELF_PASSWORD and CLAIM_STAFF_PASSWORD are required")
	}

	return cfg, nil
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
