package auth

import "net/http"

// AccessCookie and RefreshCookie are the cookie names used by the auth
// endpoints and read back by the session resolver and route guard.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Identity is the authenticated principal carried by a session.
type Identity struct {
	ID    uint64
	Email string
	Role  Role
}

// Session is derived per request from a valid access token.  It is
// never persisted and has no lifecycle beyond the request evaluating it.
type Session struct {
	User Identity
}

// ResolveSession builds a session from the request's access token
// cookie.  A nil session with a nil error is the normal "not signed in"
// outcome: missing cookie, failed verification of any kind, or claims
// without a usable identity all land there.  Refreshing an expired
// token is an explicit client action and is never attempted here.
func ResolveSession(r *http.Request, codec *TokenCodec) *Session {
	ck, err := r.Cookie(AccessCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	return SessionFromToken(ck.Value, codec)
}

// SessionFromToken resolves a session from a raw access token string.
func SessionFromToken(raw string, codec *TokenCodec) *Session {
	claims, err := codec.VerifyAccessToken(raw)
	if err != nil {
		return nil
	}
	id, err := ParseUserID(claims.Subject)
	if err != nil {
		return nil
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return nil
	}
	return &Session{User: Identity{ID: id, Email: claims.Email, Role: role}}
}
