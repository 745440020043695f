package config

type SMTPConfig interface {
	GetSmtpHost() string
	GetSmtpPort() int
	GetSmtpSecure() bool
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpFromName() string
	GetSmtpFromAddress() string
}

type SMTP struct{}

var _ SMTPConfig = SMTP{}

func (SMTP) GetSmtpHost() string {
	return GetEnv("EMAIL_HOST", "smtp.gmail.com")
}

func (SMTP) GetSmtpPort() int {
	return GetEnvInt("EMAIL_PORT", 587)
}

// GetSmtpSecure selects implicit TLS (port 465) over STARTTLS.
func (SMTP) GetSmtpSecure() bool {
	return GetEnvBool("EMAIL_SECURE", false)
}

func (SMTP) GetSmtpAccount() string {
	return GetEnv("EMAIL_USER", "")
}

func (SMTP) GetSmtpPassword() string {
	return GetEnv("EMAIL_PASSWORD", "")
}

func (SMTP) GetSmtpFromName() string {
	return GetEnv("EMAIL_FROM_NAME", "College 2.0")
}

func (s SMTP) GetSmtpFromAddress() string {
	return GetEnv("EMAIL_FROM", s.GetSmtpAccount())
}
