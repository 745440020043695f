// Package captcha verifies reCAPTCHA tokens posted by the login and signup forms.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

type Result struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
}

type Verifier interface {
	// Verify returns an error only when the verification service could not be
	// asked; a rejected token is a Result with Success false.
	Verify(ctx context.Context, token, remoteIP string) (*Result, error)
}

var _ Verifier = (*ReCaptcha)(nil)

type ReCaptcha struct {
	secret   string
	endpoint string
	client   *http.Client
}

type Option func(*ReCaptcha)

func WithEndpoint(endpoint string) Option {
	return func(r *ReCaptcha) {
		r.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(r *ReCaptcha) {
		r.client = client
	}
}

func NewReCaptcha(secret string, opts ...Option) (*ReCaptcha, error) {
	if secret == "" {
		return nil, errors.New("[NewReCaptcha] secret is required")
	}
	r := &ReCaptcha{
		secret:   secret,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *ReCaptcha) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "[ReCaptcha.Verify] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[ReCaptcha.Verify] request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[ReCaptcha.Verify] unexpected status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "[ReCaptcha.Verify] decode")
	}
	return &result, nil
}
