package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("SESSION_COOKIE_NAME", "")

	c := New()
	require.Equal(t, ":4001", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.False(t, c.IsProduction())
	require.Equal(t, 1000, c.GetRateLimitMax())
	require.Equal(t, 15*time.Minute, c.GetRateLimitWindow())
	require.Equal(t, "connect.sid", c.GetSessionCookieName())
	require.Equal(t, 30*24*time.Hour, c.GetRememberMeTTL())
}

func TestProductionRateLimit(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("RATE_LIMIT_MAX", "")
	require.True(t, New().IsProduction())
	require.Equal(t, 100, New().GetRateLimitMax())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://app.example.com/")
	t.Setenv("TEST_FRONTEND_URL", "http://localhost:5173")

	origins := New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://app.example.com"))
	require.True(t, origins.IsAllowedOrigin("http://localhost:5173"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
}

func TestValidateReportsMissingVars(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_CALLBACK_URL", "")
	t.Setenv("SESSION_SECRET", "s")

	err := Validate(New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GOOGLE_CLIENT_SECRET")
	require.Contains(t, err.Error(), "GOOGLE_CALLBACK_URL")
	require.NotContains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("IPO_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("IPO_TEST_DOTENV", "")
	os.Unsetenv("IPO_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "loaded", os.Getenv("IPO_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
