package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func siteverifyServer(t *testing.T, validToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "test-secret", r.PostForm.Get("secret"))

		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == validToken {
			_ = json.NewEncoder(w).Encode(Result{Success: true, Hostname: "localhost"})
			return
		}
		_ = json.NewEncoder(w).Encode(Result{Success: false, ErrorCodes: []string{"invalid-input-response"}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify(t *testing.T) {
	srv := siteverifyServer(t, "good")
	v, err := NewReCaptcha("test-secret", WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	res, err := v.Verify(context.Background(), "good", "127.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = v.Verify(context.Background(), "bad", "")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, []string{"invalid-input-response"}, res.ErrorCodes)
}

func TestVerifyServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v, err := NewReCaptcha("test-secret", WithEndpoint(srv.URL))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "tok", "")
	require.Error(t, err)
}

func TestNewReCaptchaRequiresSecret(t *testing.T) {
	_, err := NewReCaptcha("")
	require.Error(t, err)
}
