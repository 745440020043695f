package statetoken

import (
	"context"
	"errors"
	"sync"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps tokens in process memory; a restart drops every
// outstanding round trip.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	settings
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	return &InMemoryStore{
		entries:  make(map[string]Entry),
		settings: newSettings(opts...),
	}
}

func (s *InMemoryStore) Issue(_ context.Context, purpose Purpose, redirectTarget string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < maxIssue; i++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}
		if _, exists := s.entries[token]; exists {
			continue
		}
		s.entries[token] = Entry{
			Purpose:        purpose,
			RedirectTarget: redirectTarget,
			CreatedAt:      s.nowTime(),
		}
		return token, nil
	}
	return "", errors.New("[InMemoryStore.Issue] could not generate a unique token")
}

// Validate looks the token up, sweeps every expired entry, then deletes the
// token whether or not it was found.
func (s *InMemoryStore) Validate(_ context.Context, token string) (*Entry, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowTime()
	entry, found := s.entries[token]
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
		}
	}
	delete(s.entries, token)

	if !found {
		return nil, ErrNotFound
	}
	if s.strictExpiry && s.expired(entry, now) {
		return nil, ErrNotFound
	}
	return &entry, nil
}

// Len reports the number of outstanding tokens.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
