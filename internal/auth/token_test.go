package auth

import (
	"testing"
	"time"
)

func TestMemoryTokenStore_IssueResolve(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour, nil)

	tok, err := s.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	uid, ok := s.Resolve(tok)
	if !ok || uid != 42 {
		t.Fatalf("Resolve: got (%d, %v), want (42, true)", uid, ok)
	}
}

func TestMemoryTokenStore_Unforgeable(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour, nil)
	if _, err := s.Issue(1); err != nil {
		t.Fatal(err)
	}

	for _, forged := range []string{"", "guess", "session_1", "Bearer x"} {
		if uid, ok := s.Resolve(forged); ok {
			t.Fatalf("forged token %q resolved to %d", forged, uid)
		}
	}
}

func TestMemoryTokenStore_TokensAreUnique(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour, nil)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := s.Issue(uint(i + 1))
		if err != nil {
			t.Fatal(err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token issued: %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestMemoryTokenStore_ExpiryWithFakeClock(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewMemoryTokenStore(24*time.Hour, clock)

	tok, err := s.Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(23 * time.Hour)
	if _, ok := s.Resolve(tok); !ok {
		t.Fatal("token expired too early")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := s.Resolve(tok); ok {
		t.Fatal("token resolved past its TTL")
	}
	// Lazy purge removed the record.
	if s.Len() != 0 {
		t.Fatalf("expired record not purged, Len=%d", s.Len())
	}
}

func TestMemoryTokenStore_RevokeIdempotent(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour, nil)
	tok, err := s.Issue(3)
	if err != nil {
		t.Fatal(err)
	}

	s.Revoke(tok)
	if _, ok := s.Resolve(tok); ok {
		t.Fatal("revoked token still resolves")
	}
	// Revoking again, or revoking garbage, must not panic or error.
	s.Revoke(tok)
	s.Revoke("")
	s.Revoke("never-issued")
}
