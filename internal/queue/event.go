// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// UserSignedUpEvent is published after a successful registration. It
// carries enough for downstream consumers (welcome mail, verification,
// analytics) without querying the primary database.
type UserSignedUpEvent struct {
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	SignedUpAt string `json:"signed_up_at"`
}
