// Package google is the Google OpenID Connect identity provider.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/internal/config"
	"golang.org/x/oauth2"
)

var _ auth.IdentityProvider = (*Provider)(nil)

type Provider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	oidcProvider *oidc.Provider // nil when built from static endpoints
}

// NewProvider discovers Google's endpoints and signing keys from the issuer.
func NewProvider(ctx context.Context, cfg config.OAuthConfig) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetGoogleIssuer())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	p := NewProviderWithEndpoint(cfg, provider.Endpoint(), provider.Verifier(&oidc.Config{
		ClientID: cfg.GetGoogleClientID(),
	}))
	p.oidcProvider = provider
	return p, nil
}

// NewProviderWithEndpoint skips discovery.
func NewProviderWithEndpoint(cfg config.OAuthConfig, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *Provider {
	return &Provider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetGoogleCallbackURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: verifier,
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for tokens and returns the profile
// from the verified ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (*auth.Profile, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no ID token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	if claims.Email == "" && p.oidcProvider != nil {
		userInfo, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(oauth2Token))
		if err != nil {
			return nil, fmt.Errorf("userinfo request failed: %w", err)
		}
		claims.Email = userInfo.Email
		claims.EmailVerified = userInfo.EmailVerified
		var extra struct {
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := userInfo.Claims(&extra); err == nil {
			if claims.Name == "" {
				claims.Name = extra.Name
			}
			if claims.Picture == "" {
				claims.Picture = extra.Picture
			}
		}
	}

	// An unverified address must never match a local account.
	if !claims.EmailVerified {
		claims.Email = ""
	}

	return &auth.Profile{
		ProviderID: claims.Sub,
		Email:      claims.Email,
		Name:       claims.Name,
		Avatar:     claims.Picture,
	}, nil
}
