package config

import "time"

const sessionSecretVar = "SESSION_SECRET"

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
	GetRememberMeTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionSecret() string {
	return GetEnv(sessionSecretVar, "")
}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "connect.sid")
}

// GetSessionTTL bounds server-side sessions whose cookie lives only for the
// browser session.
func (Session) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 24*time.Hour)
}

func (Session) GetRememberMeTTL() time.Duration {
	return 30 * 24 * time.Hour
}
