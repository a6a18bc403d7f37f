package model

import "strings"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLecturer  Role = "LECTURER"
	RoleModerator Role = "MODERATOR"
	RoleStudent   Role = "STUDENT"
)

// UserRoles are the roles a non-admin principal can resolve to.
var UserRoles = []Role{RoleStudent, RoleLecturer, RoleModerator}

func ParseRole(raw string) (Role, bool) {
	switch role := Role(strings.ToUpper(strings.TrimSpace(raw))); role {
	case RoleAdmin, RoleLecturer, RoleModerator, RoleStudent:
		return role, true
	default:
		return "", false
	}
}

func (r Role) IsUserRole() bool {
	return r == RoleStudent || r == RoleLecturer || r == RoleModerator
}

// ResolveRole derives a user's role from the academic records attached to it.
// A lecturer record wins over a student record.
func ResolveRole(user User) (Role, bool) {
	switch {
	case user.Lecturer != nil && user.Lecturer.IsModerator:
		return RoleModerator, true
	case user.Lecturer != nil:
		return RoleLecturer, true
	case user.Student != nil:
		return RoleStudent, true
	default:
		return "", false
	}
}
