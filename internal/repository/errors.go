// Package repository implements SQL persistence over database/sql.
// Sentinel errors let handlers translate failures into HTTP status
// codes without inspecting driver details.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
