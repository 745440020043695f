package providerfake

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/jrsteele09/ipo-auth-server/auth"
)

var _ auth.IdentityProvider = (*FakeProvider)(nil)

const AuthURL = "https://accounts.example.com/o/oauth2/auth"

// FakeProvider hands out the profile registered for an authorization code.
type FakeProvider struct {
	lock     sync.RWMutex
	profiles map[string]*auth.Profile
	Err      error
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{profiles: make(map[string]*auth.Profile)}
}

func (p *FakeProvider) AddCode(code string, profile *auth.Profile) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.profiles[code] = profile
}

func (p *FakeProvider) AuthCodeURL(state string) string {
	return AuthURL + "?" + url.Values{"state": {state}}.Encode()
}

func (p *FakeProvider) Exchange(_ context.Context, code string) (*auth.Profile, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.Err != nil {
		return nil, p.Err
	}
	profile, ok := p.profiles[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	c := *profile
	return &c, nil
}
