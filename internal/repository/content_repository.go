package repository

import (
	"context"
	"database/sql"

	"github.com/velora-cms/velora/internal/model"
)

// ContentRepo persists posts and products in the `content_items` table.
type ContentRepo struct{ DB *sql.DB }

func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{DB: db} }

const contentColumns = "id,title,body,kind,published,author_id,created_at,updated_at"

// List returns all content items, newest first. When publishedOnly is
// set, drafts are excluded; the public listing uses that form.
func (r *ContentRepo) List(ctx context.Context, publishedOnly bool) ([]model.ContentItem, error) {
	q := "SELECT " + contentColumns + " FROM content_items"
	if publishedOnly {
		q += " WHERE published=1"
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ContentItem
	for rows.Next() {
		var it model.ContentItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Body, &it.Kind,
			&it.Published, &it.AuthorID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Get fetches one item by id.
func (r *ContentRepo) Get(ctx context.Context, id uint64) (*model.ContentItem, error) {
	var it model.ContentItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM content_items WHERE id=? LIMIT 1", id).
		Scan(&it.ID, &it.Title, &it.Body, &it.Kind,
			&it.Published, &it.AuthorID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Create inserts an item and returns the stored row.
func (r *ContentRepo) Create(ctx context.Context, title, body, kind string, published bool, authorID uint64) (*model.ContentItem, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO content_items (title, body, kind, published, author_id) VALUES (?,?,?,?,?)",
		title, body, kind, published, authorID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id))
}

// ContentUpdate carries the optional fields an edit may change.
type ContentUpdate struct {
	Title     *string
	Body      *string
	Kind      *string
	Published *bool
}

// Update applies a partial update and returns the fresh row.
func (r *ContentRepo) Update(ctx context.Context, id uint64, upd ContentUpdate) (*model.ContentItem, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE content_items SET
			title     = COALESCE(?, title),
			body      = COALESCE(?, body),
			kind      = COALESCE(?, kind),
			published = COALESCE(?, published)
		 WHERE id=?`,
		upd.Title, upd.Body, upd.Kind, upd.Published, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, ferr := r.Get(ctx, id); ferr != nil {
			return nil, ferr
		}
	}
	return r.Get(ctx, id)
}

// Delete removes an item by id.
func (r *ContentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM content_items WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
