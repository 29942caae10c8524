package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Customer   = "customer"
)

// ValidRoles is the set of allowed values for Users.role.
var ValidRoles = []string{Customer, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether role has back-office access.
func IsStaff(role string) bool {
	return role == Admin || role == Superadmin
}
