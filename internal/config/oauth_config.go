package config

import "time"

const (
	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	googleCallbackURLVar  = "GOOGLE_CALLBACK_URL"
	googleIssuerVar       = "GOOGLE_ISSUER"
)

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleCallbackURL() string
	GetGoogleIssuer() string
	GetStateTokenTTL() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetGoogleClientID() string {
	return GetEnv(googleClientIDVar, "")
}

func (OAuth) GetGoogleClientSecret() string {
	return GetEnv(googleClientSecretVar, "")
}

func (OAuth) GetGoogleCallbackURL() string {
	return GetEnv(googleCallbackURLVar, "")
}

func (OAuth) GetGoogleIssuer() string {
	return GetEnv(googleIssuerVar, "https://accounts.google.com")
}

func (OAuth) GetStateTokenTTL() time.Duration {
	return 15 * time.Minute
}
