package auth

import (
	"slices"

	"github.com/transferdesk/platform/internal/domain"
)

// Redirect targets used by the gate.
const (
	SignInPath  = "/login"
	DefaultPath = "/"
)

// View is a protected area of the back office. An empty AllowedRoles admits
// any authenticated user.
type View struct {
	Name         string
	Path         string
	AllowedRoles []domain.Role
}

// Permits reports whether role may open the view.
func (v View) Permits(role domain.Role) bool {
	return len(v.AllowedRoles) == 0 || slices.Contains(v.AllowedRoles, role)
}

// Back office views.
var (
	ViewDashboard = View{Name: "dashboard", Path: "/dashboard"}
	ViewPlayers   = View{Name: "players", Path: "/players"}
	ViewTeams     = View{Name: "teams", Path: "/teams"}
	ViewTransfers = View{Name: "transfers", Path: "/transfers"}
	ViewProfile   = View{Name: "profile", Path: "/me"}
	ViewUsers     = View{Name: "users", Path: "/users", AllowedRoles: []domain.Role{domain.RoleAdmin}}
)

// Views returns every protected view.
func Views() []View {
	return []View{ViewDashboard, ViewPlayers, ViewTeams, ViewTransfers, ViewProfile, ViewUsers}
}
