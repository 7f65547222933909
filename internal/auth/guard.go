package auth

// DenyReason distinguishes a missing session from an insufficient role.
type DenyReason int

const (
	DenyNone DenyReason = iota
	// DenyUnauthenticated means no session was presented.
	DenyUnauthenticated
	// DenyForbidden means a session exists but its role is not in the
	// required set.
	DenyForbidden
)

// Decision is the outcome of an authorization check.
type Decision struct {
	User   *Identity
	Reason DenyReason
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Reason == DenyNone }

// Authorize checks a resolved session against a required role set.  An
// empty set means any authenticated role is accepted.  Membership is an
// exact match on canonical role values; no role implies another.
func Authorize(required []Role, s *Session) Decision {
	if s == nil {
		return Decision{Reason: DenyUnauthenticated}
	}
	if len(required) == 0 || s.User.Role.In(required) {
		u := s.User
		return Decision{User: &u}
	}
	return Decision{Reason: DenyForbidden}
}
