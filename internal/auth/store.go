package auth

import (
	"context"
	"errors"

	"github.com/velora-cms/velora/internal/model"
)

// ErrUserNotFound is returned by lookups when no row matches.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned by Create when the email is registered.
var ErrEmailTaken = errors.New("email already registered")

// CredentialStore is the persistence contract the auth core depends on.
// Implementations never see a raw password or raw refresh token; the
// core hands them irreversible hashes and compares raw tokens against
// stored hashes itself.
type CredentialStore interface {
	// FindByEmail looks up a user by case-normalized email, including
	// the secret hash columns needed for credential checks.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID looks up a user by id, including RefreshTokenHash.
	FindByID(ctx context.Context, id uint64) (*model.User, error)

	// Create inserts a user with an already hashed password and
	// returns the stored row. Role must be canonical.
	Create(ctx context.Context, name, email, passwordHash string, role Role) (*model.User, error)

	// SetRefreshTokenHash overwrites the user's refresh token hash.
	// A nil hash clears it, invalidating any outstanding refresh token.
	SetRefreshTokenHash(ctx context.Context, id uint64, hash *string) error

	// RotateRefreshTokenHash replaces oldHash with newHash only if
	// oldHash is still the stored value. When another rotation already
	// consumed the token it returns ErrTokenReplay so exactly one of
	// two concurrent refreshes can win.
	RotateRefreshTokenHash(ctx context.Context, id uint64, oldHash, newHash string) error
}
