package auth

// Role is the closed set of account roles. Every authorization check matches
// against these values; anything else is rejected at parse time.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubadmin Role = "subadmin"
	RoleUser     Role = "user"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSubadmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Staff reports whether the role may access other users' clinical data.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleSubadmin
}

func (r Role) String() string { return string(r) }
