package model

import "time"

// Setting represents a row of the `settings` table: one site-wide
// key/value pair, e.g. theme or site title.
type Setting struct {
	K         string    // settings.k (primary key)
	V         string    // settings.v
	UpdatedAt time.Time // settings.updated_at
}
