package google

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://accounts.example.com"
	testClientID = "client-id"
)

type testOAuthConfig struct{}

func (testOAuthConfig) GetGoogleClientID() string { return testClientID }
func (testOAuthConfig) GetGoogleClientSecret() string { return "client-secret" }
func (testOAuthConfig) GetGoogleCallbackURL() string { return "http://localhost:4001/OAuth/google/callback" }
func (testOAuthConfig) GetGoogleIssuer() string { return testIssuer }
func (testOAuthConfig) GetStateTokenTTL() time.Duration { return 15 * time.Minute }

type testFixture struct {
	key      *rsa.PrivateKey
	idToken  string
	server   *httptest.Server
	provider *Provider
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &testFixture{key: key}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     f.idToken,
		})
	}))
	t.Cleanup(f.server.Close)

	verifier := oidc.NewVerifier(testIssuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}, &oidc.Config{ClientID: testClientID})
	f.provider = NewProviderWithEndpoint(testOAuthConfig{}, oauth2.Endpoint{
		AuthURL:   f.server.URL + "/auth",
		TokenURL:  f.server.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, verifier)
	return f
}

func (f *testFixture) signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwtlib.MapClaims) {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	f.idToken = signed
}

func validClaims() jwtlib.MapClaims {
	now := time.Now()
	return jwtlib.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "google-sub-1",
		"email":          "a@x.com",
		"email_verified": true,
		"name":           "A Google",
		"picture":        "https://lh3.googleusercontent.com/a/photo.jpg",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestAuthCodeURL(t *testing.T) {
	f := setupTestFixture(t)

	u, err := url.Parse(f.provider.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "/auth", u.Path)
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, "state-123", q.Get("state"))
	require.Equal(t, "online", q.Get("access_type"))
	require.Equal(t, "select_account", q.Get("prompt"))
	require.Equal(t, "openid profile email", q.Get("scope"))
	require.Equal(t, "http://localhost:4001/OAuth/google/callback", q.Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	f := setupTestFixture(t)
	f.signIDToken(t, f.key, validClaims())

	profile, err := f.provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, "google-sub-1", profile.ProviderID)
	require.Equal(t, "a@x.com", profile.Email)
	require.Equal(t, "A Google", profile.Name)
	require.Equal(t, "https://lh3.googleusercontent.com/a/photo.jpg", profile.Avatar)
}

func TestExchangeDropsUnverifiedEmail(t *testing.T) {
	f := setupTestFixture(t)
	claims := validClaims()
	claims["email_verified"] = false
	f.signIDToken(t, f.key, claims)

	profile, err := f.provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, "google-sub-1", profile.ProviderID)
	require.Empty(t, profile.Email)
	require.Equal(t, "A Google", profile.Name)
}

func TestExchangeRejectsBadCode(t *testing.T) {
	f := setupTestFixture(t)
	f.signIDToken(t, f.key, validClaims())

	_, err := f.provider.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
}

func TestExchangeRejectsForeignSignature(t *testing.T) {
	f := setupTestFixture(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f.signIDToken(t, other, validClaims())

	_, err = f.provider.Exchange(context.Background(), "good-code")
	require.Error(t, err)
}

func TestExchangeRejectsWrongAudience(t *testing.T) {
	f := setupTestFixture(t)
	claims := validClaims()
	claims["aud"] = "someone-else"
	f.signIDToken(t, f.key, claims)

	_, err := f.provider.Exchange(context.Background(), "good-code")
	require.Error(t, err)
}

func TestExchangeRequiresIDToken(t *testing.T) {
	f := setupTestFixture(t)
	f.idToken = ""

	_, err := f.provider.Exchange(context.Background(), "good-code")
	require.Error(t, err)
}
