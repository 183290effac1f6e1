package entity

import "strings"

// Role is the single role stored on a user row.
type Role string

const (
	// RoleUser is a shopper.
	RoleUser Role = "user"
	// RoleAdmin manages the catalog and every order.
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// ParseRole reads a stored role. Accounts imported from the earlier store
// carry numeric roles, 1 for admin and 0 for shopper; anything unknown is
// treated as a shopper so it never gains admin rights.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "1":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Grants returns the roles a token for this role carries. Admins also hold
// the user role so every authenticated route accepts them.
func (r Role) Grants() Roles {
	if r == RoleAdmin {
		return Roles{RoleUser, RoleAdmin}
	}

	return Roles{RoleUser}
}

// Roles is the role set carried in an access token.
type Roles []Role

// ToStrings is the JWT claim form.
func (rs Roles) ToStrings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}

	return out
}
