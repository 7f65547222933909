package model

import "time"

// User represents a row of the `users` table. Each field corresponds to
// a column. The password hash and refresh token hash are secret columns;
// handlers must build separate response types and never serialize them.
//
// RefreshTokenHash is nullable: nil means the user has no active
// session. It holds the hash of the single currently valid refresh
// token and is overwritten on every rotation, so at most one refresh
// token is live per user at any time.
type User struct {
	ID               uint64    // users.id
	Name             string    // users.name (empty when NULL)
	Email            string    // users.email, unique, stored lowercase
	PasswordHash     string    // users.password_hash (bcrypt)
	Role             string    // users.role, canonical uppercase
	RefreshTokenHash *string   // users.refresh_token_hash (nullable)
	IsActive         bool      // users.is_active
	IsVerified       bool      // users.is_verified
	CreatedAt        time.Time // users.created_at
	UpdatedAt        time.Time // users.updated_at
}
