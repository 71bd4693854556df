package client

// Front-end routes used as redirect targets.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/admin/dashboard"
	RouteUsers     = "/admin/users"
)

// Route describes a navigable target and its access requirements.
type Route struct {
	Path string
	// Protected routes require a logged-in session.
	Protected bool
	// Roles, when non-empty, restricts the route to these roles.
	Roles []string
}

// Admission is the outcome of a navigation check.
type Admission struct {
	Allowed  bool
	Redirect string
}

// Guard makes advisory navigation decisions from the client session. It is a
// convenience for front ends; the server enforces access independently.
type Guard struct {
	session *Session
}

func NewGuard(session *Session) *Guard {
	return &Guard{session: session}
}

// Admit decides whether r may be entered. Unauthenticated access to a
// protected route redirects to RouteLogin; a missing or insufficient role on
// a role-restricted route redirects to RouteDashboard.
func (g *Guard) Admit(r Route) Admission {
	if r.Protected && !g.session.IsLoggedIn() {
		return Admission{Redirect: RouteLogin}
	}
	if len(r.Roles) > 0 && !g.session.HasRole(r.Roles...) {
		return Admission{Redirect: RouteDashboard}
	}
	return Admission{Allowed: true}
}
