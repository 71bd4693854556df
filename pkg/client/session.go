package client

import (
	"errors"
	"sync"
	"time"

	"github.com/retailhub/backoffice/pkg/jwtx"
)

// Roles known to the back office.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Identity is the user described by the held token.
type Identity struct {
	ID        string
	Email     string
	Role      string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func identityFromClaims(c *jwtx.Claims) *Identity {
	return &Identity{
		ID:        c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		Name:      c.Name,
		IssuedAt:  c.IssuedAtTime(),
		ExpiresAt: c.ExpiresAtTime(),
	}
}

// Session tracks the single current identity of a client. Its state is
// recomputed from the token on every change and subscribers observe each
// recomputation.
type Session struct {
	store Storage
	now   func() time.Time

	mu    sync.RWMutex
	token string
	user  *Identity

	subMu  sync.Mutex
	subs   map[int]func(*Identity)
	nextID int
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession returns an empty session backed by store. Call Restore to load a
// previously persisted token.
func NewSession(store Storage, opts ...SessionOption) *Session {
	s := &Session{store: store, now: time.Now, subs: make(map[int]func(*Identity))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted token and decodes it locally. A missing,
// undecodable or expired token, or a corrupt store, leaves the session logged
// out and is removed from storage. Restore never fails on a bad token; the
// error reports storage failures only.
func (s *Session) Restore() error {
	raw, ok, err := s.store.Get(TokenKey)
	if errors.Is(err, ErrCorruptStorage) {
		s.set("", nil)
		return s.store.Delete(TokenKey)
	}
	if err != nil {
		s.set("", nil)
		return err
	}
	if !ok || raw == "" {
		s.set("", nil)
		return nil
	}

	claims, err := jwtx.Decode(raw)
	if err != nil || claims.Expired(s.now()) {
		s.set("", nil)
		return s.store.Delete(TokenKey)
	}
	s.set(raw, identityFromClaims(claims))
	return nil
}

// SetToken persists raw and recomputes the identity from it. An undecodable
// token clears the session and returns jwtx.ErrMalformed.
func (s *Session) SetToken(raw string) error {
	claims, err := jwtx.Decode(raw)
	if err != nil {
		_ = s.Clear()
		return err
	}
	if err := s.store.Set(TokenKey, raw); err != nil {
		return err
	}
	s.set(raw, identityFromClaims(claims))
	return nil
}

// Clear removes the token from storage and memory.
func (s *Session) Clear() error {
	s.set("", nil)
	return s.store.Delete(TokenKey)
}

// Token returns the held token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns a copy of the current identity, or nil.
func (s *Session) CurrentUser() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// HasRole reports whether the current identity holds one of roles.
func (s *Session) HasRole(roles ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

// Subscribe registers fn to be called after every recomputation with the new
// identity (nil when logged out). The returned func unsubscribes.
func (s *Session) Subscribe(fn func(*Identity)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) set(token string, user *Identity) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		var snapshot *Identity
		if user != nil {
			u := *user
			snapshot = &u
		}
		fn(snapshot)
	}
}
