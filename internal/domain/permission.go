package domain

import (
	"errors"
	"fmt"
	"slices"
)

type Permission string

const (
	PermissionRead           Permission = "read"
	PermissionWrite          Permission = "write"
	PermissionDelete         Permission = "delete"
	PermissionAdmin          Permission = "admin"
	PermissionTrading        Permission = "trading"
	PermissionAnalytics      Permission = "analytics"
	PermissionWallet         Permission = "wallet"
	PermissionAdvancedCharts Permission = "advanced_charts"
)

var ErrUnknownPermission = errors.New("unknown permission")

// AllPermissions lists every permission token in declaration order.
func AllPermissions() []Permission {
	return []Permission{
		PermissionRead,
		PermissionWrite,
		PermissionDelete,
		PermissionAdmin,
		PermissionTrading,
		PermissionAnalytics,
		PermissionWallet,
		PermissionAdvancedCharts,
	}
}

// Valid reports whether p belongs to the closed permission set.
func (p Permission) Valid() bool {
	return slices.Contains(AllPermissions(), p)
}

// ParsePermission converts a token into a Permission and rejects unknown tokens.
func ParsePermission(token string) (Permission, error) {
	p := Permission(token)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, token)
	}
	return p, nil
}

// Permissions returns the fixed permission set granted to the role.
// Unknown roles get none.
func (r Role) Permissions() []Permission {
	switch r {
	case RoleAdmin:
		return []Permission{
			PermissionRead,
			PermissionWrite,
			PermissionDelete,
			PermissionAdmin,
			PermissionTrading,
			PermissionAnalytics,
			PermissionWallet,
		}
	case RolePremium:
		return []Permission{
			PermissionRead,
			PermissionWrite,
			PermissionTrading,
			PermissionAnalytics,
			PermissionWallet,
			PermissionAdvancedCharts,
		}
	case RoleUser:
		return []Permission{
			PermissionRead,
			PermissionTrading,
			PermissionWallet,
		}
	}
	return nil
}

// HasPermission checks if the role grants p.
func (r Role) HasPermission(p Permission) bool {
	return slices.Contains(r.Permissions(), p)
}

// HasPermission answers a lookup by raw token.
// Unknown roles and unknown tokens are denied rather than reported.
func HasPermission(role Role, token string) bool {
	p, err := ParsePermission(token)
	if err != nil {
		return false
	}
	return role.HasPermission(p)
}
