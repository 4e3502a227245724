// Package market holds the static dashboard data and assembles the per-view payloads.
package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Asset is a listed coin with its reference quote.
type Asset struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
}

// TradingPair is a quoted market.
type TradingPair struct {
	Pair   string          `json:"pair"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
	Volume string          `json:"volume"`
}

// OrderLevel is one row of the order book.
type OrderLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Total  decimal.Decimal `json:"total"`
}

// OrderBook is a snapshot of resting orders.
type OrderBook struct {
	Bids []OrderLevel `json:"bids"`
	Asks []OrderLevel `json:"asks"`
}

// Holding is a portfolio position.
type Holding struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Value      decimal.Decimal `json:"value"`
	Change24h  decimal.Decimal `json:"change_24h"`
	Allocation decimal.Decimal `json:"allocation"`
}

// Transaction is a past trade or transfer.
type Transaction struct {
	Type   string           `json:"type"`
	Asset  string           `json:"asset"`
	Amount decimal.Decimal  `json:"amount"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Hash   string           `json:"hash,omitempty"`
	Time   string           `json:"time"`
}

// Balance is a wallet balance.
type Balance struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Value   decimal.Decimal `json:"value"`
}

// Share is a labelled percentage.
type Share struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// TrendingCoin is a coin with an unusual move.
type TrendingCoin struct {
	Symbol string          `json:"symbol"`
	Change decimal.Decimal `json:"change"`
	Volume string          `json:"volume"`
}

// SectorTrend is a market segment summary.
type SectorTrend struct {
	Category string          `json:"category"`
	Change   decimal.Decimal `json:"change"`
	Volume   string          `json:"volume"`
	Projects int             `json:"projects"`
}

// Stat is a labelled headline figure.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Topic is a trending community tag.
type Topic struct {
	Tag   string `json:"tag"`
	Posts int    `json:"posts"`
	Trend string `json:"trend"`
}

// FAQ is a help-center category.
type FAQ struct {
	Title     string   `json:"title"`
	Questions []string `json:"questions"`
}

// MarketOverview holds the headline market numbers the market feed starts from.
type MarketOverview struct {
	TotalMarketCap decimal.Decimal `json:"total_market_cap"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	BTCDominance   decimal.Decimal `json:"btc_dominance"`
	ActiveUsers    int64           `json:"active_users"`
	FearGreedIndex int             `json:"fear_greed_index"`
}

// Catalog is the fixed market data the dashboard shows.
type Catalog struct {
	Assets          []Asset
	Pairs           []TradingPair
	OrderBook       OrderBook
	PortfolioTotal  decimal.Decimal
	Holdings        []Holding
	Transactions    []Transaction
	Balances        []Balance
	WalletActivity  []Transaction
	Overview        MarketOverview
	MarketCapShares []Share
	VolumeBySegment []Share
	Trending        []TrendingCoin
	Sectors         []SectorTrend
	CommunityStats  []Stat
	Topics          []Topic
	SupportStats    []Stat
	FAQs            []FAQ
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// DefaultCatalog returns the demo market data.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Assets: []Asset{
			{Symbol: "BTC", Name: "Bitcoin", Price: d("45234.67"), Change24h: d("2.34")},
			{Symbol: "ETH", Name: "Ethereum", Price: d("3456.89"), Change24h: d("-1.23")},
			{Symbol: "BNB", Name: "Binance Coin", Price: d("345.67"), Change24h: d("4.56")},
			{Symbol: "ADA", Name: "Cardano", Price: d("1.23"), Change24h: d("7.89")},
			{Symbol: "SOL", Name: "Solana", Price: d("98.45"), Change24h: d("-2.11")},
		},
		Pairs: []TradingPair{
			{Pair: "BTC/USDT", Price: d("45234.67"), Change: d("2.34"), Volume: "1.2B"},
			{Pair: "ETH/USDT", Price: d("3456.89"), Change: d("-1.23"), Volume: "890M"},
			{Pair: "BNB/USDT", Price: d("345.67"), Change: d("4.56"), Volume: "234M"},
			{Pair: "ADA/USDT", Price: d("1.23"), Change: d("7.89"), Volume: "156M"},
			{Pair: "SOL/USDT", Price: d("98.45"), Change: d("-2.11"), Volume: "445M"},
		},
		OrderBook: OrderBook{
			Bids: []OrderLevel{
				{Price: d("45230.50"), Amount: d("0.5234"), Total: d("23679.82")},
				{Price: d("45225.25"), Amount: d("1.2456"), Total: d("56345.12")},
				{Price: d("45220.00"), Amount: d("0.8901"), Total: d("40245.67")},
				{Price: d("45215.75"), Amount: d("2.1234"), Total: d("95987.45")},
			},
			Asks: []OrderLevel{
				{Price: d("45235.25"), Amount: d("0.3456"), Total: d("15634.78")},
				{Price: d("45240.50"), Amount: d("0.7890"), Total: d("35698.23")},
				{Price: d("45245.75"), Amount: d("1.5678"), Total: d("70934.56")},
				{Price: d("45250.00"), Amount: d("0.9012"), Total: d("40789.34")},
			},
		},
		PortfolioTotal: d("12456.78"),
		Holdings: []Holding{
			{Symbol: "BTC", Name: "Bitcoin", Amount: d("0.2534"), Value: d("11467.89"), Change24h: d("2.34"), Allocation: d("45.2")},
			{Symbol: "ETH", Name: "Ethereum", Amount: d("3.4567"), Value: d("11945.67"), Change24h: d("-1.23"), Allocation: d("35.8")},
			{Symbol: "BNB", Name: "Binance Coin", Amount: d("12.8901"), Value: d("4456.23"), Change24h: d("4.56"), Allocation: d("12.3")},
			{Symbol: "ADA", Name: "Cardano", Amount: d("1250.45"), Value: d("1587.99"), Change24h: d("7.89"), Allocation: d("6.7")},
		},
		Transactions: []Transaction{
			{Type: "buy", Asset: "BTC", Amount: d("0.0123"), Price: dp("44567.89"), Time: "2 hours ago"},
			{Type: "sell", Asset: "ETH", Amount: d("0.5"), Price: dp("3445.67"), Time: "5 hours ago"},
			{Type: "buy", Asset: "BNB", Amount: d("5.0"), Price: dp("342.45"), Time: "1 day ago"},
			{Type: "buy", Asset: "ADA", Amount: d("100.0"), Price: dp("1.21"), Time: "2 days ago"},
		},
		Balances: []Balance{
			{Symbol: "BTC", Name: "Bitcoin", Balance: d("0.2534"), Value: d("11467.89")},
			{Symbol: "ETH", Name: "Ethereum", Balance: d("3.4567"), Value: d("11945.67")},
			{Symbol: "USDT", Name: "Tether", Balance: d("5234.56"), Value: d("5234.56")},
			{Symbol: "BNB", Name: "Binance Coin", Balance: d("12.8901"), Value: d("4456.23")},
		},
		WalletActivity: []Transaction{
			{Type: "received", Asset: "BTC", Amount: d("0.0123"), Hash: "1A1zP1...eP2yNe", Time: "2 hours ago"},
			{Type: "sent", Asset: "ETH", Amount: d("0.5"), Hash: "0x742d...35Bdf", Time: "5 hours ago"},
			{Type: "received", Asset: "USDT", Amount: d("1000"), Hash: "3J98t1...7kF2q", Time: "1 day ago"},
			{Type: "sent", Asset: "BNB", Amount: d("2.5"), Hash: "bnb1...4h8k", Time: "2 days ago"},
		},
		Overview: MarketOverview{
			TotalMarketCap: d("2100000000000"),
			TotalVolume:    d("89500000000"),
			BTCDominance:   d("42.3"),
			ActiveUsers:    125000000,
			FearGreedIndex: 72,
		},
		MarketCapShares: []Share{
			{Name: "Bitcoin", Value: d("42.3")},
			{Name: "Ethereum", Value: d("18.7")},
			{Name: "BNB", Value: d("4.2")},
			{Name: "Others", Value: d("34.8")},
		},
		VolumeBySegment: []Share{
			{Name: "Spot", Value: d("45.2")},
			{Name: "Futures", Value: d("78.3")},
			{Name: "Options", Value: d("12.1")},
			{Name: "DeFi", Value: d("23.8")},
			{Name: "NFT", Value: d("8.9")},
		},
		Trending: []TrendingCoin{
			{Symbol: "SHIB", Change: d("23.5"), Volume: "2.1B"},
			{Symbol: "DOGE", Change: d("18.2"), Volume: "1.8B"},
			{Symbol: "MATIC", Change: d("15.7"), Volume: "892M"},
			{Symbol: "SOL", Change: d("12.4"), Volume: "1.2B"},
			{Symbol: "AVAX", Change: d("9.8"), Volume: "567M"},
		},
		Sectors: []SectorTrend{
			{Category: "DeFi", Change: d("12.5"), Volume: "$4.2B", Projects: 234},
			{Category: "NFTs", Change: d("8.3"), Volume: "$1.8B", Projects: 89},
			{Category: "Gaming", Change: d("15.7"), Volume: "$2.1B", Projects: 156},
			{Category: "Metaverse", Change: d("6.9"), Volume: "$1.4B", Projects: 67},
			{Category: "Layer 2", Change: d("18.2"), Volume: "$3.5B", Projects: 45},
		},
		CommunityStats: []Stat{
			{Label: "Active Members", Value: "12.5K"},
			{Label: "Posts Today", Value: "234"},
			{Label: "Top Traders", Value: "89"},
			{Label: "Live Discussions", Value: "45"},
		},
		Topics: []Topic{
			{Tag: "#Bitcoin", Posts: 1234, Trend: "+12%"},
			{Tag: "#DeFi", Posts: 892, Trend: "+8%"},
			{Tag: "#Ethereum", Posts: 756, Trend: "+15%"},
			{Tag: "#Trading", Posts: 645, Trend: "+5%"},
			{Tag: "#NFT", Posts: 423, Trend: "+22%"},
		},
		SupportStats: []Stat{
			{Label: "Avg Response Time", Value: "< 2 hours"},
			{Label: "Resolution Rate", Value: "98.5%"},
			{Label: "Active Tickets", Value: "12"},
			{Label: "Satisfaction", Value: "4.9/5"},
		},
		FAQs: []FAQ{
			{Title: "Getting Started", Questions: []string{"How do I create an account?", "How do I verify my identity?"}},
			{Title: "Trading", Questions: []string{"What order types are available?", "What are the trading fees?"}},
			{Title: "Security", Questions: []string{"How do I enable two-factor authentication?", "What should I do if my account is compromised?"}},
		},
	}
}

// Asset finds a listed coin by symbol, ignoring case.
func (c *Catalog) Asset(symbol string) (Asset, bool) {
	symbol = strings.ToUpper(symbol)
	for _, a := range c.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// Price returns the reference price of symbol as a float, the unit live feeds work in.
func (c *Catalog) Price(symbol string) (float64, bool) {
	a, ok := c.Asset(symbol)
	if !ok {
		return 0, false
	}
	return a.Price.InexactFloat64(), true
}
