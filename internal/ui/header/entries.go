package header

import (
	"strings"

	"github.com/mindfulplus/mindful/internal/models"
)

// Entry is a navigation target. Logout entries have no route.
type Entry struct {
	ID     string
	Icon   string
	Label  string
	Route  string
	Logout bool
}

const (
	RouteLogin = "/login"
	RouteHome  = "/home"
)

// NavItems are the primary destinations. The first four also form the
// bottom bar.
var NavItems = []Entry{
	{ID: "home", Icon: "🏠", Label: "Home", Route: RouteHome},
	{ID: "diagnostic", Icon: "🧠", Label: "Diagnostic", Route: "/diagnostic"},
	{ID: "notes", Icon: "📒", Label: "Notes", Route: "/notes"},
	{ID: "recommendations", Icon: "💡", Label: "Recommendations", Route: "/recommendations"},
	{ID: "tellme", Icon: "✨", Label: "Tell Me +", Route: "/tellme"},
	{ID: "help", Icon: "👩‍⚕️", Label: "Professional help", Route: "/help"},
}

// MenuEntries is the full hamburger menu.
var MenuEntries = append(append([]Entry(nil), NavItems...),
	Entry{ID: "stats", Icon: "📊", Label: "Statistics", Route: "/stats"},
	Entry{ID: "logout", Icon: "🚪", Label: "Log out", Logout: true},
)

const bottomItems = 4

var publicRoutes = map[string]bool{
	"/":         true,
	RouteLogin:  true,
	"/register": true,
	"/welcome":  true,
}

// IsPublic reports whether route is reachable without a session.
func IsPublic(route string) bool { return publicRoutes[route] }

// RoleFor is the role sent to the notification service: the session's
// own, or a guess from the current route.
func RoleFor(s *models.Session, route string) models.Role {
	if s != nil && s.Role != "" {
		return s.Role
	}
	if strings.HasPrefix(route, "/pro") {
		return models.RoleProfessional
	}
	return models.RoleNormal
}
