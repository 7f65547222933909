package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashRefreshToken hashes a raw refresh token for storage.  The token
// is digested with SHA-256 first because bcrypt only reads the first
// 72 bytes of its input and a signed token is longer than that.
func HashRefreshToken(raw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(refreshDigest(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyRefreshToken reports whether raw matches the stored hash.
func VerifyRefreshTokenHash(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), refreshDigest(raw)) == nil
}

func refreshDigest(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return []byte(hex.EncodeToString(sum[:]))
}
