package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/model"
)

// UserRepo persists users in the `users` table. It implements
// auth.CredentialStore and additionally exposes the listing and
// mutation methods the admin API needs.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,refresh_token_hash,is_active,is_verified,created_at,updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u       model.User
		name    sql.NullString
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &name, &u.Email, &u.PasswordHash, &u.Role,
		&refresh, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = name.String
	if refresh.Valid {
		h := refresh.String
		u.RefreshTokenHash = &h
	}
	return &u, nil
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Create inserts a user and returns the stored row. The password must
// already be hashed; the role must be canonical.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string, role auth.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var dbName sql.NullString
	if name != "" {
		dbName = sql.NullString{String: name, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		dbName, email, passwordHash, role.String())
	if err != nil {
		// MySQL error 1062: duplicate entry on the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, uint64(id))
}

// SetRefreshTokenHash overwrites the stored refresh token hash. nil
// clears the column, which invalidates any outstanding refresh token.
func (r *UserRepo) SetRefreshTokenHash(ctx context.Context, id uint64, hash *string) error {
	var v sql.NullString
	if hash != nil {
		v = sql.NullString{String: *hash, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", v, id)
	return err
}

// RotateRefreshTokenHash swaps oldHash for newHash only while oldHash
// is still the stored value. Two refreshes racing on the same token
// both pass the hash comparison, but only the first conditional update
// matches a row; the loser gets ErrTokenReplay.
func (r *UserRepo) RotateRefreshTokenHash(ctx context.Context, id uint64, oldHash, newHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=? AND refresh_token_hash=?",
		newHash, id, oldHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrTokenReplay
	}
	return nil
}

// List returns all users, newest first, for the admin API.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u       model.User
			name    sql.NullString
			refresh sql.NullString
		)
		if err := rows.Scan(&u.ID, &name, &u.Email, &u.PasswordHash, &u.Role,
			&refresh, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Name = name.String
		if refresh.Valid {
			h := refresh.String
			u.RefreshTokenHash = &h
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserUpdate carries the optional fields the admin API may change.
// Nil fields keep their stored value.
type UserUpdate struct {
	Name       *string
	Role       *auth.Role
	IsActive   *bool
	IsVerified *bool
}

// Update applies a partial update and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error) {
	var role *string
	if upd.Role != nil {
		s := upd.Role.String()
		role = &s
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
			name        = COALESCE(?, name),
			role        = COALESCE(?, role),
			is_active   = COALESCE(?, is_active),
			is_verified = COALESCE(?, is_verified)
		 WHERE id=?`,
		upd.Name, role, upd.IsActive, upd.IsVerified, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL also reports 0 when the values did not change, so
		// confirm existence before reporting not found.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return nil, ferr
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a user by id.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
