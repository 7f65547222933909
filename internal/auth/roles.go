package auth

import "strings"

// Role is the canonical access level stored on a user and embedded in
// access tokens.  Values are uppercase and compared exactly; any case
// normalization happens in ParseRole before a role is persisted or
// placed into a token, never at comparison time.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAuthor     Role = "AUTHOR"
	RoleEditor     Role = "EDITOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// AdminRoles is the set allowed past admin-restricted path prefixes.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// StaffRoles may create and edit content items.
var StaffRoles = []Role{RoleAuthor, RoleEditor, RoleAdmin, RoleSuperAdmin}

// ParseRole normalizes an arbitrary role string to its canonical form.
// Unknown values are rejected so that a typo can never widen access.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAuthor:
		return RoleAuthor, true
	case RoleEditor:
		return RoleEditor, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	}
	return "", false
}

// String returns the canonical string form.
func (r Role) String() string { return string(r) }

// In reports whether r is a member of the given set.
func (r Role) In(set []Role) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
