package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Abcdef12", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "Abcdef12") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "abcdef12") {
		t.Error("wrong password accepted")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	// Real refresh tokens are far past bcrypt's 72-byte window; the
	// digest step must make the full token significant.
	token := strings.Repeat("x", 72) + ".signature"
	other := strings.Repeat("x", 72) + ".different"

	hash, err := HashRefreshToken(token, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyRefreshTokenHash(hash, token) {
		t.Error("matching token rejected")
	}
	if VerifyRefreshTokenHash(hash, other) {
		t.Error("token differing only past byte 72 accepted")
	}
}
