package market

import (
	"context"
	"errors"
	"maps"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/shopspring/decimal"
)

// ErrUnknownView is returned for a view name outside the route table.
var ErrUnknownView = errors.New("view not found")

// Preferences is the part of the preferences service views read from.
type Preferences interface {
	LoadWatchlist(ctx context.Context) []string
	LoadPreferences(ctx context.Context) map[string]any
}

// Session is the part of the session views read from.
type Session interface {
	gate.Viewer
	CurrentUser() *domain.User
}

// IndexView is the landing page.
type IndexView struct {
	Watchlist []string `json:"watchlist"`
	Cards     []Asset  `json:"cards"`
}

// TradingView is the trading desk.
type TradingView struct {
	CurrentPrice decimal.Decimal `json:"current_price"`
	Pairs        []TradingPair   `json:"pairs"`
	OrderBook    OrderBook       `json:"order_book"`
}

// PortfolioView lists holdings and recent trades.
type PortfolioView struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	Holdings     []Holding       `json:"holdings"`
	Transactions []Transaction   `json:"transactions"`
}

// WalletView lists balances and transfers.
type WalletView struct {
	Balances []Balance     `json:"balances"`
	Activity []Transaction `json:"activity"`
}

// AnalyticsView is the market overview. AdvancedCharts carries the feature gate for
// the premium chart panel.
type AnalyticsView struct {
	Overview        MarketOverview `json:"overview"`
	MarketCapShares []Share        `json:"market_cap_shares"`
	VolumeBySegment []Share        `json:"volume_by_segment"`
	Trending        []TrendingCoin `json:"trending"`
	AdvancedCharts  gate.Decision  `json:"advanced_charts"`
}

// TrendsView shows movers and sectors.
type TrendsView struct {
	Trending []TrendingCoin `json:"trending"`
	Sectors  []SectorTrend  `json:"sectors"`
}

// CommunityView shows community activity.
type CommunityView struct {
	Stats  []Stat  `json:"stats"`
	Topics []Topic `json:"topics"`
}

// SupportView shows the help center.
type SupportView struct {
	Stats []Stat `json:"stats"`
	FAQs  []FAQ  `json:"faqs"`
}

// ProfileView shows the current user.
type ProfileView struct {
	User        *domain.User        `json:"user"`
	Role        string              `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
}

// SettingsView shows saved preferences over the defaults.
type SettingsView struct {
	Settings map[string]any `json:"settings"`
}

// DefaultSettings returns the settings shown before anything is saved.
func DefaultSettings() map[string]any {
	return map[string]any{
		"theme":    "dark",
		"language": "en",
		"currency": "USD",
		"notifications": map[string]any{
			"email":        true,
			"push":         true,
			"sms":          false,
			"trading":      true,
			"security":     true,
			"marketing":    false,
			"priceAlerts":  true,
			"orderUpdates": true,
		},
		"privacy": map[string]any{
			"profileVisible":      true,
			"tradingStatsVisible": false,
			"onlineStatus":        true,
			"activityVisible":     false,
		},
		"security": map[string]any{
			"twoFactor":          true,
			"loginNotifications": true,
			"sessionTimeout":     "30",
			"ipWhitelist":        false,
		},
	}
}

// Views builds view payloads.
type Views struct {
	catalog *Catalog
	prefs   Preferences
	session Session
}

// NewViews creates a view builder.
func NewViews(catalog *Catalog, prefs Preferences, session Session) *Views {
	return &Views{
		catalog: catalog,
		prefs:   prefs,
		session: session,
	}
}

// Build returns the payload of the named view. It does not check access; callers
// run the route gate first.
func (v *Views) Build(ctx context.Context, name string) (any, error) {
	c := v.catalog

	switch name {
	case "index":
		return v.index(ctx), nil
	case "trading":
		return TradingView{CurrentPrice: c.Pairs[0].Price, Pairs: c.Pairs, OrderBook: c.OrderBook}, nil
	case "portfolio":
		return PortfolioView{TotalValue: c.PortfolioTotal, Holdings: c.Holdings, Transactions: c.Transactions}, nil
	case "wallet":
		return WalletView{Balances: c.Balances, Activity: c.WalletActivity}, nil
	case "analytics":
		return AnalyticsView{
			Overview:        c.Overview,
			MarketCapShares: c.MarketCapShares,
			VolumeBySegment: c.VolumeBySegment,
			Trending:        c.Trending,
			AdvancedCharts: gate.EvaluateFeature(gate.SubjectOf(v.session),
				domain.PermissionAdvancedCharts, gate.DefaultFeatureOptions()),
		}, nil
	case "trends":
		return TrendsView{Trending: c.Trending, Sectors: c.Sectors}, nil
	case "community":
		return CommunityView{Stats: c.CommunityStats, Topics: c.Topics}, nil
	case "support":
		return SupportView{Stats: c.SupportStats, FAQs: c.FAQs}, nil
	case "profile":
		return v.profile(), nil
	case "settings":
		settings := DefaultSettings()
		maps.Copy(settings, v.prefs.LoadPreferences(ctx))
		return SettingsView{Settings: settings}, nil
	}
	return nil, ErrUnknownView
}

// index shows a card for every watched symbol the catalog knows, in watchlist order.
func (v *Views) index(ctx context.Context) IndexView {
	watchlist := v.prefs.LoadWatchlist(ctx)
	cards := make([]Asset, 0, len(watchlist))
	for _, symbol := range watchlist {
		if a, ok := v.catalog.Asset(symbol); ok {
			cards = append(cards, a)
		}
	}
	return IndexView{Watchlist: watchlist, Cards: cards}
}

func (v *Views) profile() ProfileView {
	user := v.session.CurrentUser()
	view := ProfileView{User: user, Role: gate.DisplayRole(""), Permissions: []domain.Permission{}}
	if user != nil {
		view.Role = gate.DisplayRole(user.Role)
		view.Permissions = user.Role.Permissions()
	}
	return view
}
