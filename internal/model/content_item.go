package model

import "time"

// Content item kinds. The same table backs both blog posts and shop
// products; Kind tells them apart.
const (
	ContentKindPost    = "post"
	ContentKindProduct = "product"
)

// ContentItem represents a row of the `content_items` table.
type ContentItem struct {
	ID        uint64    // content_items.id
	Title     string    // content_items.title
	Body      string    // content_items.body
	Kind      string    // content_items.kind (post|product)
	Published bool      // content_items.published
	AuthorID  uint64    // content_items.author_id (references users.id)
	CreatedAt time.Time // content_items.created_at
	UpdatedAt time.Time // content_items.updated_at
}
