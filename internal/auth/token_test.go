package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *TokenManager {
	return NewTokenManager("super-secret", "contacts-api-test", accessTTL, refreshTTL, time.Hour)
}

func TestGeneratePairAndParse(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour, 24*time.Hour)
	access, refresh, err := tm.GeneratePair(42)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	gotID, err := tm.Parse(access, ScopeAccess)
	if err != nil {
		t.Fatalf("Parse access: %v", err)
	}
	if gotID != 42 {
		t.Fatalf("access user id = %d, want 42", gotID)
	}

	gotID, err = tm.Parse(refresh, ScopeRefresh)
	if err != nil {
		t.Fatalf("Parse refresh: %v", err)
	}
	if gotID != 42 {
		t.Fatalf("refresh user id = %d, want 42", gotID)
	}
}

func TestGeneratePairIssuesDistinctTokens(t *testing.T) {
	t.Parallel()

	// Rotation stores the new refresh token over the old one, so tokens
	// issued back-to-back within the same second must still differ.
	tm := newTestManager(time.Hour, 24*time.Hour)
	_, first, err := tm.GeneratePair(7)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	_, second, err := tm.GeneratePair(7)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if first == second {
		t.Fatal("consecutive refresh tokens are identical")
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	tm := newTestManager(-time.Second, 24*time.Hour)
	access, _, err := tm.GeneratePair(7)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	_, err = tm.Parse(access, ScopeAccess)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseWrongScope(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour, 24*time.Hour)
	access, refresh, err := tm.GeneratePair(7)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := tm.Parse(access, ScopeRefresh); !errors.Is(err, ErrWrongTokenScope) {
		t.Fatalf("access-as-refresh: expected ErrWrongTokenScope, got %v", err)
	}
	if _, err := tm.Parse(refresh, ScopeAccess); !errors.Is(err, ErrWrongTokenScope) {
		t.Fatalf("refresh-as-access: expected ErrWrongTokenScope, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour, 24*time.Hour)
	access, _, err := tm.GeneratePair(7)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	other := NewTokenManager("different-secret", "contacts-api-test", time.Hour, time.Hour, time.Hour)
	if _, err := other.Parse(access, ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour, 24*time.Hour)
	if _, err := tm.Parse("not.a.jwt", ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestEmailTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour, 24*time.Hour)
	tok, err := tm.GenerateEmailToken("a@x.com")
	if err != nil {
		t.Fatalf("GenerateEmailToken: %v", err)
	}

	email, err := tm.ParseEmailToken(tok)
	if err != nil {
		t.Fatalf("ParseEmailToken: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("email = %q, want a@x.com", email)
	}

	// An access token must not pass as an email token.
	access, _, err := tm.GeneratePair(1)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := tm.ParseEmailToken(access); !errors.Is(err, ErrWrongTokenScope) {
		t.Fatalf("expected ErrWrongTokenScope, got %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123456" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "pw123456") {
		t.Fatal("CheckPassword rejected correct password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatal("CheckPassword accepted wrong password")
	}
}
