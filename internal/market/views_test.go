package market

import (
	"context"
	"testing"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPreferences struct {
	watchlist []string
	prefs     map[string]any
}

func (m *mockPreferences) LoadWatchlist(context.Context) []string       { return m.watchlist }
func (m *mockPreferences) LoadPreferences(context.Context) map[string]any { return m.prefs }

type mockSession struct {
	user *domain.User
}

func (m *mockSession) IsAuthenticated() bool { return m.user != nil }

func (m *mockSession) CurrentRole() domain.Role {
	if m.user == nil {
		return ""
	}
	return m.user.Role
}

func (m *mockSession) CurrentUser() *domain.User { return m.user }

func newMockSession(role domain.Role) *mockSession {
	if role == "" {
		return &mockSession{}
	}
	return &mockSession{user: &domain.User{ID: "2", Email: "user@cryptodefi.com", FirstName: "Regular", LastName: "User", Role: role}}
}

func TestCatalog_Price(t *testing.T) {
	c := DefaultCatalog()

	price, ok := c.Price("btc")
	require.True(t, ok)
	assert.InDelta(t, 45234.67, price, 1e-9)

	_, ok = c.Price("XYZ")
	assert.False(t, ok)
}

func TestCatalog_HoldingsAllocationSumsToHundred(t *testing.T) {
	c := DefaultCatalog()

	var total float64
	for _, h := range c.Holdings {
		total += h.Allocation.InexactFloat64()
	}
	assert.InDelta(t, 100, total, 1e-9)
}

func TestViews_IndexFollowsWatchlist(t *testing.T) {
	prefs := &mockPreferences{watchlist: []string{"SOL", "DOGE", "BTC"}}
	v := NewViews(DefaultCatalog(), prefs, newMockSession(""))

	got, err := v.Build(context.Background(), "index")
	require.NoError(t, err)

	index := got.(IndexView)
	assert.Equal(t, []string{"SOL", "DOGE", "BTC"}, index.Watchlist)
	require.Len(t, index.Cards, 2)
	assert.Equal(t, "SOL", index.Cards[0].Symbol)
	assert.Equal(t, "BTC", index.Cards[1].Symbol)
}

func TestViews_AnalyticsAdvancedChartsGate(t *testing.T) {
	tests := []struct {
		role        domain.Role
		wantOutcome gate.Outcome
		wantUpgrade bool
	}{
		{domain.RolePremium, gate.OutcomeContent, false},
		{domain.RoleUser, gate.OutcomeFeatureNotice, true},
		{domain.RoleAdmin, gate.OutcomeFeatureNotice, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			v := NewViews(DefaultCatalog(), &mockPreferences{}, newMockSession(tt.role))

			got, err := v.Build(context.Background(), "analytics")
			require.NoError(t, err)

			decision := got.(AnalyticsView).AdvancedCharts
			assert.Equal(t, tt.wantOutcome, decision.Outcome)
			if tt.wantOutcome == gate.OutcomeFeatureNotice {
				require.NotNil(t, decision.Notice)
				assert.Equal(t, tt.wantUpgrade, decision.Notice.Upgrade != "")
			}
		})
	}
}

func TestViews_Profile(t *testing.T) {
	v := NewViews(DefaultCatalog(), &mockPreferences{}, newMockSession(domain.RolePremium))

	got, err := v.Build(context.Background(), "profile")
	require.NoError(t, err)

	profile := got.(ProfileView)
	assert.Equal(t, "Premium", profile.Role)
	assert.Contains(t, profile.Permissions, domain.PermissionAdvancedCharts)
}

func TestViews_SettingsMergesSavedPreferences(t *testing.T) {
	prefs := &mockPreferences{prefs: map[string]any{"theme": "light", "layout": "compact"}}
	v := NewViews(DefaultCatalog(), prefs, newMockSession(domain.RoleUser))

	got, err := v.Build(context.Background(), "settings")
	require.NoError(t, err)

	settings := got.(SettingsView).Settings
	assert.Equal(t, "light", settings["theme"])
	assert.Equal(t, "compact", settings["layout"])
	assert.Equal(t, "USD", settings["currency"])
}

func TestViews_EveryRouteBuilds(t *testing.T) {
	v := NewViews(DefaultCatalog(), &mockPreferences{watchlist: []string{"BTC"}}, newMockSession(domain.RoleAdmin))

	for _, route := range gate.Routes {
		_, err := v.Build(context.Background(), route.Name)
		assert.NoError(t, err, route.Name)
	}

	_, err := v.Build(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownView)
}
