// Package auth implements the dual-credential core: an in-process bearer
// token store and a signed cookie session, plus the ordered resolution
// strategies that extract a credential from an inbound request.
//
// Tokens are opaque 256-bit random values with a fixed TTL, held only in
// process memory: restarting the process invalidates every bearer token,
// while cookie sessions (persisted client-side) survive. Expired entries are
// purged lazily on lookup; there is no background sweep.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// TokenStore issues, validates, and revokes opaque bearer tokens.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// Issue creates a fresh token bound to userID with the configured TTL.
	Issue(userID uint) (string, error)
	// Resolve returns the user bound to token. ok is false for unknown or
	// expired tokens; a spoofed token never yields an identity.
	Resolve(token string) (userID uint, ok bool)
	// Revoke deletes token. Revoking an absent token is not an error.
	Revoke(token string)
}

// tokenRecord is one issued credential. Records are immutable once stored;
// the only mutation is deletion on logout or expiry.
type tokenRecord struct {
	userID    uint
	expiresAt time.Time
}

// MemoryTokenStore is the process-local TokenStore: a mutex-guarded map with
// an injectable clock so tests can control expiry deterministically.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenRecord
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryTokenStore constructs a store with the given token lifetime.
// A nil clock defaults to time.Now.
func NewMemoryTokenStore(ttl time.Duration, now func() time.Time) *MemoryTokenStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenStore{
		tokens: make(map[string]tokenRecord),
		ttl:    ttl,
		now:    now,
	}
}

// NewToken returns a URL-safe opaque token with 256 bits of entropy.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue implements TokenStore.
func (s *MemoryTokenStore) Issue(userID uint) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = tokenRecord{userID: userID, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

// Resolve implements TokenStore. Expired records are deleted on detection.
func (s *MemoryTokenStore) Resolve(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return 0, false
	}
	if rec.expiresAt.Before(s.now()) {
		delete(s.tokens, token)
		return 0, false
	}
	return rec.userID, true
}

// Revoke implements TokenStore.
func (s *MemoryTokenStore) Revoke(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// Len reports the number of live records (expired entries not yet touched by
// Resolve still count). Intended for diagnostics and tests.
func (s *MemoryTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
