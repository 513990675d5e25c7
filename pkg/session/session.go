// Package session holds the client-side authentication state: the stored
// bearer token, the cached profile and the local expiry check.
//
// Expiry is read from the token without verifying its signature. That is a
// UI decision only; the API server validates every request.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/mentorlog/mentorlog-api/pkg/jwt"
)

var ErrClosed = errors.New("session: closed")

// Session is an explicit, injectable session context.
type Session struct {
	mu     sync.RWMutex
	store  Store
	clock  Clock
	closed bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// New creates a session backed by store.
func New(store Store, opts ...Option) *Session {
	s := &Session{store: store, clock: SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the clock the session evaluates expiry with.
func (s *Session) Clock() Clock {
	return s.clock
}

// Login replaces the stored token and profile.
func (s *Session) Login(token string, profile *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.store.Save(token, profile)
}

// Logout clears token and profile together.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.store.Clear()
}

// Close detaches the session from its store. Stored data is kept.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Token returns the stored bearer token, or "".
func (s *Session) Token() string {
	token, _, _ := s.load()
	return token
}

// User returns a copy of the cached profile, or nil.
func (s *Session) User() *UserProfile {
	_, profile, err := s.load()
	if err != nil || profile == nil {
		return nil
	}
	cp := *profile
	return &cp
}

// ExpiresAt decodes the exp claim. ok is false for absent or malformed tokens.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

// IsAuthenticated reports whether a token is held and its exp is in the
// future. Anything undecodable counts as expired.
func (s *Session) IsAuthenticated() bool {
	return TokenValid(s.Token(), s.clock.Now())
}

// TokenValid reports whether token decodes and expires after now.
func TokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	exp, ok := tokenExpiry(token)
	return ok && now.Before(exp)
}

// load treats corrupt stored data as signed out and clears it, so token and
// profile are never half present.
func (s *Session) load() (string, *UserProfile, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return "", nil, ErrClosed
	}
	token, profile, err := s.store.Load()
	s.mu.RUnlock()

	if !errors.Is(err, ErrCorrupt) {
		return token, profile, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		if clearErr := s.store.Clear(); clearErr != nil {
			return "", nil, clearErr
		}
	}
	return "", nil, nil
}

func tokenExpiry(token string) (time.Time, bool) {
	claims, err := jwt.ParseUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
