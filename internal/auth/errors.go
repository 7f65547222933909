// Package auth implements the session core: token issuance and
// verification, credential hashing, session resolution from cookies and
// role-based authorization. Storage is abstracted behind CredentialStore
// so handlers and tests never touch SQL directly.
package auth

import "errors"

// ErrInvalidToken covers every non-expiry verification failure: bad
// signature, wrong algorithm, malformed token or missing key material.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when a structurally valid token is past
// its expiry.
var ErrExpiredToken = errors.New("token expired")

// ErrTokenReplay is returned when a presented refresh token does not
// match the stored hash, or when a concurrent rotation already consumed
// it. Callers must report it as a plain unauthorized response.
var ErrTokenReplay = errors.New("refresh token replay suspected")
