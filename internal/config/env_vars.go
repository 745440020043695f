package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	logLevelVar   = "LOG_LEVEL"
	frontendVar   = "FRONTEND_URL"
	testFrontVar  = "TEST_FRONTEND_URL"
	mongoURIVar   = "MONGODB_URI"
	mongoDBVar    = "MONGODB_DATABASE"
	redisURLVar   = "REDIS_URL"
	recaptchaVar  = "RECAPTCHA_SECRET_KEY"
	productionEnv = "PRODUCTION"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "4001")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "IPO Server")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == productionEnv
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetFrontendURL() string {
	return strings.TrimSuffix(GetEnv(frontendVar, "https://visit-blue-stock.vercel.app"), "/")
}

func (EnvVars) GetTestFrontendURL() string {
	return strings.TrimSuffix(GetEnv(testFrontVar, ""), "/")
}

func (EnvVars) GetMongoURI() string {
	return GetEnv(mongoURIVar, "mongodb://localhost:27017")
}

func (EnvVars) GetMongoDatabase() string {
	return GetEnv(mongoDBVar, "ipo")
}

// GetRedisURL returns an empty string when Redis is not configured; the
// server then keeps sessions, state tokens and rate limits in process.
func (EnvVars) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}

func (EnvVars) GetReCaptchaSecret() string {
	return GetEnv(recaptchaVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
