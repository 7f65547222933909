package auth

import (
	"errors"
	"testing"
	"time"
)

func testCodec() *TokenCodec {
	return NewTokenCodec(Options{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tc := testCodec()

	raw, err := tc.CreateAccessToken(42, "a@x.com", RoleEditor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claims, err := tc.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want %q", claims.Subject, "42")
	}
	if claims.Email != "a@x.com" {
		t.Errorf("email = %q, want %q", claims.Email, "a@x.com")
	}
	if claims.Role != "EDITOR" {
		t.Errorf("role = %q, want %q", claims.Role, "EDITOR")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tc := testCodec()

	raw, err := tc.CreateRefreshToken(7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	claims, err := tc.VerifyRefreshToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "7" {
		t.Errorf("subject = %q, want %q", claims.Subject, "7")
	}
}

func TestExpiredAccessToken(t *testing.T) {
	tc := NewTokenCodec(Options{
		AccessSecret:  "s",
		RefreshSecret: "r",
		AccessTTL:     time.Nanosecond,
	})
	raw, err := tc.CreateAccessToken(1, "a@x.com", RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := tc.VerifyAccessToken(raw); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tc := testCodec()
	other := NewTokenCodec(Options{AccessSecret: "different", RefreshSecret: "different"})

	raw, err := tc.CreateAccessToken(1, "", RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := other.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsCrossTokenKind(t *testing.T) {
	tc := testCodec()

	// A refresh token must never verify as an access token: the two
	// kinds are signed with different secrets.
	refresh, err := tc.CreateRefreshToken(1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tc.VerifyAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	tc := testCodec()
	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := tc.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccessToken(%q) err = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestMissingSecretFailsClosed(t *testing.T) {
	tc := NewTokenCodec(Options{})
	if _, err := tc.CreateAccessToken(1, "", RoleUser); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("create err = %v, want ErrInvalidToken", err)
	}
	if _, err := tc.VerifyAccessToken("anything"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify err = %v, want ErrInvalidToken", err)
	}
}

func TestDecodeSubjectUnverified(t *testing.T) {
	tc := NewTokenCodec(Options{
		AccessSecret:  "s",
		RefreshSecret: "r",
		AccessTTL:     time.Nanosecond,
	})
	raw, err := tc.CreateAccessToken(99, "a@x.com", RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	// Sign-out must recover the subject even from an expired token.
	id, ok := tc.DecodeSubjectUnverified(raw)
	if !ok || id != 99 {
		t.Fatalf("DecodeSubjectUnverified = (%d, %v), want (99, true)", id, ok)
	}
	if _, ok := tc.DecodeSubjectUnverified("garbage"); ok {
		t.Error("DecodeSubjectUnverified accepted garbage")
	}
}
