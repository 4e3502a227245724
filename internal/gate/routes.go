package gate

import "github.com/bissquit/cryptodefi/internal/domain"

// Route is a named dashboard view.
type Route struct {
	Name     string
	Path     string
	Public   bool
	Required domain.Permission
}

// Routes is the fixed route surface of the dashboard.
var Routes = []Route{
	{Name: "index", Path: "/", Public: true},
	{Name: "trading", Path: "/trading", Required: domain.PermissionTrading},
	{Name: "portfolio", Path: "/portfolio", Required: domain.PermissionWallet},
	{Name: "analytics", Path: "/analytics", Required: domain.PermissionAnalytics},
	{Name: "wallet", Path: "/wallet", Required: domain.PermissionWallet},
	{Name: "community", Path: "/community", Required: domain.PermissionRead},
	{Name: "trends", Path: "/trends", Required: domain.PermissionRead},
	{Name: "support", Path: "/support", Required: domain.PermissionRead},
	{Name: "profile", Path: "/profile", Required: domain.PermissionRead},
	{Name: "settings", Path: "/settings", Required: domain.PermissionRead},
}

// LookupRoute finds a route by name.
func LookupRoute(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Evaluate applies the route gate. Public routes are always shown.
func (r Route) Evaluate(s Subject) Decision {
	if r.Public {
		return Decision{Outcome: OutcomeContent}
	}
	return EvaluateRoute(s, r.Required, false)
}
