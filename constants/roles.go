package constants

// User roles. Role is fixed at registration; there is no self-promotion path.
const (
	RoleAdmin       = "admin"
	RoleCompanyUser = "company_user"
)

// ValidRoles lists every role accepted at user creation.
var ValidRoles = []string{
	RoleAdmin,
	RoleCompanyUser,
}

// IsValidRole reports whether role is a known role value.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
