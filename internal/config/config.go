package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	SessionConfig
	SMTPConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetFrontendURL() string
	GetTestFrontendURL() string
	GetMongoURI() string
	GetMongoDatabase() string
	GetRedisURL() string
	GetReCaptchaSecret() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
	GetExposedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Session
	SMTP
	Storage
}

func New() Config {
	return mainConfig{}
}

// LoadDotEnv reads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, f := range filenames {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("[config LoadDotEnv] %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports every required variable that is missing.
func Validate(c Config) error {
	var missing []string
	required := map[string]string{
		googleClientIDVar:     c.GetGoogleClientID(),
		googleClientSecretVar: c.GetGoogleClientSecret(),
		googleCallbackURLVar:  c.GetGoogleCallbackURL(),
		sessionSecretVar:      c.GetSessionSecret(),
	}
	for _, name := range []string{googleClientIDVar, googleClientSecretVar, googleCallbackURLVar, sessionSecretVar} {
		if strings.TrimSpace(required[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
