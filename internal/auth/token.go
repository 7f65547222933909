package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Options carries the signing configuration for a TokenCodec.  It is
// built once from environment configuration and passed in explicitly so
// tests can run isolated codecs with distinct secrets.
type Options struct {
	AccessSecret  string        // HMAC secret for access tokens
	RefreshSecret string        // HMAC secret for refresh tokens
	AccessTTL     time.Duration // access token lifetime (default 15m)
	RefreshTTL    time.Duration // refresh token lifetime (default 7d)
}

// AccessClaims is the payload of an access token.  Subject holds the
// user id in decimal form; Email and Role are informational copies so
// a request can be evaluated without a database round trip.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the deliberately minimal payload of a refresh token:
// only the subject plus the registered timestamps.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenCodec creates and verifies signed HS256 tokens.  It holds no
// mutable state and is safe for concurrent use.
type TokenCodec struct {
	opts Options
}

// NewTokenCodec returns a codec over the given options.  Secrets are
// not validated here; a missing secret surfaces as ErrInvalidToken on
// the first create or verify call.
func NewTokenCodec(opts Options) *TokenCodec {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{opts: opts}
}

// CreateAccessToken signs an access token for the user.  Each call
// embeds the current issue time, so two tokens for the same user are
// not byte-comparable.
func (tc *TokenCodec) CreateAccessToken(userID uint64, email string, role Role) (string, error) {
	if tc.opts.AccessSecret == "" {
		return "", ErrInvalidToken
	}
	now := time.Now().UTC()
	claims := AccessClaims{
		Email: email,
		Role:  role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   FormatUserID(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.opts.AccessTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(tc.opts.AccessSecret))
}

// CreateRefreshToken signs a refresh token carrying only the subject.
func (tc *TokenCodec) CreateRefreshToken(userID uint64) (string, error) {
	if tc.opts.RefreshSecret == "" {
		return "", ErrInvalidToken
	}
	now := time.Now().UTC()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   FormatUserID(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.opts.RefreshTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(tc.opts.RefreshSecret))
}

// VerifyAccessToken checks signature and expiry and returns the claims.
// Failures are ErrExpiredToken for an elapsed lifetime and
// ErrInvalidToken for everything else; neither should be retried.
func (tc *TokenCodec) VerifyAccessToken(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := tc.verify(raw, tc.opts.AccessSecret, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
func (tc *TokenCodec) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := tc.verify(raw, tc.opts.RefreshSecret, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (tc *TokenCodec) verify(raw, secret string, claims jwt.Claims) error {
	if secret == "" {
		return ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject any token signed with a different algorithm family.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

// DecodeSubjectUnverified extracts the subject claim without checking
// the signature or expiry.  Sign-out uses it so a session can still be
// destroyed after the access token has expired.  It must never be used
// to grant access.
func (tc *TokenCodec) DecodeSubjectUnverified(raw string) (uint64, bool) {
	var claims AccessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return 0, false
	}
	id, err := ParseUserID(claims.Subject)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FormatUserID renders a user id the way tokens carry it.
func FormatUserID(id uint64) string { return strconv.FormatUint(id, 10) }

// ParseUserID parses a token subject back into a user id.
func ParseUserID(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
