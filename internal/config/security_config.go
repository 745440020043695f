package config

import "time"

type SecurityConfig interface {
	GetRateLimitWindow() time.Duration
	GetRateLimitMax() int
	GetJSONBodyLimit() int64
	GetUploadLimit() int64
	GetResetTokenTTL() time.Duration
	GetBcryptCost() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetRateLimitWindow() time.Duration {
	return GetEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)
}

func (Security) GetRateLimitMax() int {
	if (EnvVars{}).IsProduction() {
		return GetEnvInt("RATE_LIMIT_MAX", 100)
	}
	return GetEnvInt("RATE_LIMIT_MAX", 1000)
}

func (Security) GetJSONBodyLimit() int64 {
	return 10 << 10 // 10kb
}

func (Security) GetUploadLimit() int64 {
	return 5 << 20 // 5MB per logo
}

func (Security) GetResetTokenTTL() time.Duration {
	return 15 * time.Minute
}

func (Security) GetBcryptCost() int {
	return 10
}
