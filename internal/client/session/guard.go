package session

// Well-known navigation targets.
const (
	RouteLogin            = "/login"
	RouteStudentDashboard = "/student/dashboard"
	RouteAdminStudents    = "/admin/students"
)

// DecisionKind classifies a route-guard outcome.
type DecisionKind string

const (
	DecisionAllow       DecisionKind = "allow"
	DecisionShowPending DecisionKind = "pending"
	DecisionRedirect    DecisionKind = "redirect"
)

// Decision is the outcome of a guard evaluation. Target is set only for
// redirects.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Decide is the route guard: a pure function of the session state, the
// resolved role, and the roles a destination requires. It has no side
// effects; identical inputs always produce identical decisions.
//
//   - Loading (or a store not yet initialized) → show pending, render
//     nothing protected.
//   - Anonymous → redirect to the login page.
//   - Authenticated with an empty requirement, or with the resolved role in
//     it → allow.
//   - Authenticated but not permitted → redirect to the role's own landing
//     route rather than an error page.
func Decide(state State, role Role, required []Role) Decision {
	switch state {
	case StateAnonymous:
		return Decision{Kind: DecisionRedirect, Target: RouteLogin}
	case StateAuthenticated:
		// fall through to the role check below
	default:
		// Uninitialized and Loading: nothing protected may render yet.
		return Decision{Kind: DecisionShowPending}
	}

	if len(required) == 0 {
		return Decision{Kind: DecisionAllow}
	}
	for _, r := range required {
		if r == role {
			return Decision{Kind: DecisionAllow}
		}
	}

	return Decision{Kind: DecisionRedirect, Target: Landing(role)}
}

// Landing maps a role to its post-login landing route. Unknown roles land
// on the login page.
func Landing(role Role) string {
	switch role {
	case RoleStudent:
		return RouteStudentDashboard
	case RoleTeacher, RoleAdmin:
		return RouteAdminStudents
	default:
		return RouteLogin
	}
}
