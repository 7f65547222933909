package repository

import (
	"context"
	"database/sql"

	"github.com/velora-cms/velora/internal/model"
)

// SettingRepo persists site-wide key/value settings.
type SettingRepo struct{ DB *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{DB: db} }

// List returns all settings ordered by key.
func (r *SettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT k, v, updated_at FROM settings ORDER BY k")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.K, &s.V, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert writes a setting, inserting or overwriting as needed.
func (r *SettingRepo) Upsert(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO settings (k, v) VALUES (?,?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
		key, value)
	return err
}
