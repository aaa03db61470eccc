package auth

// Role names recognized by the permission check.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// roleHierarchy totally orders the known roles by privilege.
var roleHierarchy = map[string]int{
	RoleAdmin:     3,
	RoleModerator: 2,
	RoleUser:      1,
}

// RoleLevel maps a role name to its privilege level. Unknown names map to 0,
// which means an unrecognized required role is satisfied by any
// authenticated token. Deliberate: callers that need stricter policy must
// validate role names at their boundary.
func RoleLevel(role string) int {
	return roleHierarchy[role]
}

// IsKnownRole reports whether role is one of the recognized role names.
func IsKnownRole(role string) bool {
	_, ok := roleHierarchy[role]
	return ok
}
