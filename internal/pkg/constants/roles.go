package constants

// Platform roles carried in the X-User-Role header and the users table.
const (
	RoleFarmer   = "farmer"
	RoleInvestor = "investor"
)

// ValidRoles is the set of allowed role values.
var ValidRoles = []string{RoleFarmer, RoleInvestor}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
