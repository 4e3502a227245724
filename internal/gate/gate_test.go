package gate

import (
	"testing"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRoute_Unauthenticated(t *testing.T) {
	for _, p := range append(domain.AllPermissions(), "") {
		d := EvaluateRoute(Subject{}, p, false)
		assert.Equal(t, OutcomeLogin, d.Outcome, "permission=%q", p)
		assert.False(t, d.Allowed())
		assert.Nil(t, d.Notice)
	}
}

func TestEvaluateRoute_UnauthenticatedWithFallback(t *testing.T) {
	d := EvaluateRoute(Subject{}, domain.PermissionWallet, true)
	assert.Equal(t, OutcomeFallback, d.Outcome)
}

func TestEvaluateRoute_UserWallet_Content(t *testing.T) {
	d := EvaluateRoute(Subject{Authenticated: true, Role: domain.RoleUser}, domain.PermissionWallet, false)
	assert.Equal(t, OutcomeContent, d.Outcome)
	assert.True(t, d.Allowed())
}

func TestEvaluateRoute_UserAnalytics_AccessDenied(t *testing.T) {
	d := EvaluateRoute(Subject{Authenticated: true, Role: domain.RoleUser}, domain.PermissionAnalytics, false)

	require.Equal(t, OutcomeAccessDenied, d.Outcome)
	require.NotNil(t, d.Notice)
	assert.Equal(t, "Access Denied", d.Notice.Title)
	assert.Equal(t, domain.RoleUser, d.Notice.Role)
	assert.Equal(t, domain.PermissionAnalytics, d.Notice.Permission)
	assert.Contains(t, d.Notice.String(), "Current role: User")
	assert.Contains(t, d.Notice.String(), "Required permission: analytics")
}

func TestEvaluateRoute_NoRequiredPermission(t *testing.T) {
	d := EvaluateRoute(Subject{Authenticated: true, Role: domain.RoleUser}, "", false)
	assert.Equal(t, OutcomeContent, d.Outcome)
}

func TestEvaluateRoute_UnknownRoleDenied(t *testing.T) {
	d := EvaluateRoute(Subject{Authenticated: true, Role: "operator"}, domain.PermissionRead, false)
	assert.Equal(t, OutcomeAccessDenied, d.Outcome)
}

func TestEvaluateFeature(t *testing.T) {
	user := Subject{Authenticated: true, Role: domain.RoleUser}
	admin := Subject{Authenticated: true, Role: domain.RoleAdmin}
	premium := Subject{Authenticated: true, Role: domain.RolePremium}

	tests := []struct {
		name        string
		subject     Subject
		permission  domain.Permission
		opts        FeatureOptions
		wantOutcome Outcome
		wantUpgrade bool
	}{
		{"granted ignores fallback", premium, domain.PermissionAdvancedCharts, FeatureOptions{Fallback: true}, OutcomeContent, false},
		{"denied with fallback", user, domain.PermissionAdvancedCharts, FeatureOptions{Fallback: true, ShowError: true}, OutcomeFallback, false},
		{"denied user gets upsell", user, domain.PermissionAdvancedCharts, DefaultFeatureOptions(), OutcomeFeatureNotice, true},
		{"denied admin no upsell", admin, domain.PermissionAdvancedCharts, DefaultFeatureOptions(), OutcomeFeatureNotice, false},
		{"denied anonymous no upsell", Subject{}, domain.PermissionTrading, DefaultFeatureOptions(), OutcomeFeatureNotice, false},
		{"denied without error renders nothing", user, domain.PermissionAnalytics, FeatureOptions{}, OutcomeNothing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateFeature(tt.subject, tt.permission, tt.opts)
			assert.Equal(t, tt.wantOutcome, d.Outcome)

			if tt.wantOutcome != OutcomeFeatureNotice {
				assert.Nil(t, d.Notice)
				return
			}
			require.NotNil(t, d.Notice)
			assert.Equal(t, "Premium Feature", d.Notice.Title)
			assert.Equal(t, "This feature requires "+string(tt.permission)+" permission.", d.Notice.Message)
			assert.Equal(t, tt.wantUpgrade, d.Notice.Upgrade != "")
		})
	}
}

func TestRoutes(t *testing.T) {
	user := Subject{Authenticated: true, Role: domain.RoleUser}

	tests := []struct {
		route string
		want  Outcome
	}{
		{"index", OutcomeContent},
		{"trading", OutcomeContent},
		{"portfolio", OutcomeContent},
		{"wallet", OutcomeContent},
		{"analytics", OutcomeAccessDenied},
		{"settings", OutcomeContent},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			r, ok := LookupRoute(tt.route)
			require.True(t, ok)
			assert.Equal(t, tt.want, r.Evaluate(user).Outcome)
		})
	}

	idx, _ := LookupRoute("index")
	assert.Equal(t, OutcomeContent, idx.Evaluate(Subject{}).Outcome)

	trading, _ := LookupRoute("trading")
	assert.Equal(t, OutcomeLogin, trading.Evaluate(Subject{}).Outcome)

	_, ok := LookupRoute("nope")
	assert.False(t, ok)
}

func TestDisplayRole(t *testing.T) {
	assert.Equal(t, "Premium", DisplayRole(domain.RolePremium))
	assert.Equal(t, "Guest", DisplayRole(""))
}
