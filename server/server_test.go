package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/auth/providerfake"
	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
	"github.com/jrsteele09/ipo-auth-server/captcha"
	"github.com/jrsteele09/ipo-auth-server/internal/config"
	"github.com/jrsteele09/ipo-auth-server/internal/ratelimit"
	"github.com/jrsteele09/ipo-auth-server/ipos"
	fakeiporepo "github.com/jrsteele09/ipo-auth-server/ipos/repofake"
	"github.com/jrsteele09/ipo-auth-server/mailer/mailerfake"
	"github.com/jrsteele09/ipo-auth-server/storage/memstore"
	fakeuserrepo "github.com/jrsteele09/ipo-auth-server/users/repofake"
)

const (
	testFrontendURL = "http://localhost:5173"
	testCookieName  = "connect.sid"
)

type fakeCaptcha struct {
	result *captcha.Result
	err    error
	tokens []string
}

func (c *fakeCaptcha) Verify(_ context.Context, token, _ string) (*captcha.Result, error) {
	c.tokens = append(c.tokens, token)
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

type testServer struct {
	srv      *Server
	users    *fakeuserrepo.FakeUserRepo
	sessions *sessions.InMemoryRepo
	states   *statetoken.InMemoryStore
	mailer   *mailerfake.FakeMailer
	provider *providerfake.FakeProvider
	ipoRepo  *fakeiporepo.FakeIPORepo
	store    *memstore.Store
	captcha  *fakeCaptcha
}

type serverOption func(*Deps)

func withLimiter(l ratelimit.Limiter) serverOption {
	return func(d *Deps) { d.Limiter = l }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	t.Setenv("ENV", "DEV")
	t.Setenv("FRONTEND_URL", testFrontendURL)
	t.Setenv("TEST_FRONTEND_URL", "")

	ts := &testServer{
		users:    fakeuserrepo.NewFakeUserRepo(),
		sessions: sessions.NewInMemoryRepo(),
		states:   statetoken.NewInMemoryStore(),
		mailer:   mailerfake.NewFakeMailer(),
		provider: providerfake.NewFakeProvider(),
		ipoRepo:  fakeiporepo.NewFakeIPORepo(),
		store:    memstore.New(),
		captcha:  &fakeCaptcha{result: &captcha.Result{Success: true}},
	}

	authService, err := auth.NewService(
		auth.Repos{Users: ts.users, Sessions: ts.sessions, States: ts.states},
		ts.mailer,
		ts.provider,
		auth.WithResetLinkBase(testFrontendURL),
	)
	require.NoError(t, err)
	ipoService, err := ipos.NewService(ts.ipoRepo, ts.store)
	require.NoError(t, err)
	codec, err := sessions.NewCookieCodec("test-secret")
	require.NoError(t, err)

	deps := Deps{
		Auth:    authService,
		IPOs:    ipoService,
		Cookies: codec,
		Captcha: ts.captcha,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	ts.srv, err = New(config.New(), deps)
	require.NoError(t, err)
	return ts
}

type request struct {
	method  string
	path    string
	body    io.Reader
	headers map[string]string
	cookies []*http.Cookie
}

func (ts *testServer) do(req request) *httptest.ResponseRecorder {
	r := httptest.NewRequest(req.method, req.path, req.body)
	if req.body != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, r)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookieName)
	return nil
}

func (ts *testServer) signup(t *testing.T, name, email, password string) *http.Cookie {
	t.Helper()
	rec := ts.do(request{method: http.MethodPost, path: RouteAuthSignup, body: jsonBody(t, map[string]any{
		"name": name, "email": email, "password": password, "recaptchaToken": "ok",
	})})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func TestNew_RequiresDeps(t *testing.T) {
	t.Setenv("ENV", "DEV")
	_, err := New(config.New(), Deps{})
	require.Error(t, err)
}

func TestNew_RequiresCaptchaInProduction(t *testing.T) {
	ts := newTestServer(t)
	t.Setenv("ENV", "production")
	_, err := New(config.New(), Deps{Auth: ts.srv.auth, IPOs: ts.srv.ipos, Cookies: ts.srv.cookies})
	require.Error(t, err)
}

func TestTestRoute(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(request{method: http.MethodGet, path: RouteTest})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hello from backend!", rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	require.Empty(t, rec.Header().Get("X-Powered-By"))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(request{method: http.MethodGet, path: "/nope?x=1"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "fail", body["status"])
	require.Equal(t, "Can't find /nope?x=1 on this server!", body["message"])

	// a known path with the wrong method is also a 404
	rec = ts.do(request{method: http.MethodGet, path: RouteAuthLogin})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlockedPaths(t *testing.T) {
	ts := newTestServer(t)
	for _, p := range []string{"/home", "/lib/x.js", "/server", "/wp-app.log"} {
		rec := ts.do(request{method: http.MethodPost, path: p})
		require.Equal(t, http.StatusNotFound, rec.Code, p)
		require.Empty(t, rec.Body.String(), p)
	}
}

func TestCorsPreflight(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(request{method: http.MethodOptions, path: RouteAuthLogin, headers: map[string]string{
		"Origin": testFrontendURL,
	}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, testFrontendURL, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Equal(t, "GET, POST, PUT, PATCH, DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Authorization", rec.Header().Get("Access-Control-Expose-Headers"))

	rec = ts.do(request{method: http.MethodOptions, path: RouteAuthLogin, headers: map[string]string{
		"Origin": "https://evil.example",
	}})
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, withLimiter(ratelimit.NewInMemoryLimiter(2, time.Minute)))

	for i := 0; i < 2; i++ {
		rec := ts.do(request{method: http.MethodGet, path: RouteTest})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := ts.do(request{method: http.MethodGet, path: RouteTest})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "2", rec.Header().Get("RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("RateLimit-Reset"))
	body := decodeBody(t, rec)
	require.Equal(t, "Too many requests from this IP, please try again later.", body["message"])
	require.Equal(t, "rate_limited", body["reason"])

	// another client has its own window
	rec = ts.do(request{method: http.MethodGet, path: RouteTest, headers: map[string]string{"X-Forwarded-For": "10.0.0.9"}})
	require.Equal(t, http.StatusOK, rec.Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, ratelimit.ErrUnavailable
}

func TestRateLimit_FailsOpen(t *testing.T) {
	ts := newTestServer(t, withLimiter(brokenLimiter{}))
	rec := ts.do(request{method: http.MethodGet, path: RouteTest})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJSONBodyLimit(t *testing.T) {
	ts := newTestServer(t)
	big := strings.Repeat("a", 11<<10)
	rec := ts.do(request{method: http.MethodPost, path: RouteForgotPassword, body: jsonBody(t, map[string]any{"email": big})})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestQuerySanitizer(t *testing.T) {
	ts := newTestServer(t)
	var seen url.Values
	h := ts.srv.QuerySanitizerMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?redirectUrl=%2Fok&%24gt=1&a.b=2", nil))
	require.Equal(t, url.Values{"redirectUrl": {"/ok"}}, seen)
}

func TestRecoverMiddleware(t *testing.T) {
	ts := newTestServer(t)
	h := ts.srv.RecoverMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Internal server error", body["message"])
	require.Contains(t, body["stack"], "boom")
}

func TestWriteError_HidesStackInProduction(t *testing.T) {
	ts := newTestServer(t)
	t.Setenv("ENV", "PRODUCTION")
	rec := httptest.NewRecorder()
	ts.srv.writeError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("db down"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "internal_error", body["reason"])
	require.NotContains(t, body, "stack")
}
