package session

import (
	"strings"

	"github.com/dkarpov/examgate/internal/client/token"
)

// Role is the normalized access level of a session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// studentSubjectPrefix marks subjects of tokens issued by the student
// face-login endpoint, e.g. "student:42".
const studentSubjectPrefix = "student:"

// ResolveRole derives a Role from decoded claims. The checks are ordered:
//
//  1. A recognized role claim wins.
//  2. A subject prefixed "student:" resolves to RoleStudent.
//  3. Everything else resolves to RoleAdmin.
//
// Rule 3 is a legacy fallback for tokens minted before the backend emitted
// role claims. It grants the most powerful role to any claims lacking both
// a role and a student-prefixed subject; kept for compatibility, recorded
// as a policy decision in DESIGN.md.
func ResolveRole(c token.Claims) Role {
	switch Role(c.Role) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(c.Role)
	}

	if strings.HasPrefix(c.Subject, studentSubjectPrefix) {
		return RoleStudent
	}

	return RoleAdmin
}
