package authz

const (
	RoleSales      = 10
	RoleOperations = 20
	RoleAudit      = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

// DefaultRole is assigned to every self-registered user.
const DefaultRole = RoleSales

func IsElevated(roleID int) bool {
	return roleID == RoleOperations || roleID == RoleManagement || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// CanSeeAll reports whether reads skip owner scoping.
func CanSeeAll(roleID int) bool {
	return IsElevated(roleID) || IsReadOnly(roleID)
}

func RoleName(roleID int) string {
	switch roleID {
	case RoleSales:
		return "sales"
	case RoleOperations:
		return "operations"
	case RoleAudit:
		return "audit"
	case RoleManagement:
		return "management"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

func IsKnown(roleID int) bool {
	return RoleName(roleID) != "unknown"
}
