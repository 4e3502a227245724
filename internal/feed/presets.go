package feed

import "time"

// Field names used by the presets.
const (
	FieldPrice          = "price"
	FieldVolume         = "volume"
	FieldTotalValue     = "total_value"
	FieldTotalMarketCap = "total_market_cap"
	FieldTotalVolume    = "total_volume"
	FieldFearGreedIndex = "fear_greed_index"
)

// Preset starting values.
const (
	DefaultTradingPrice   = 45234.67
	DefaultPortfolioValue = 12456.78
	DefaultMarketCap      = 2.1e12
	DefaultMarketVolume   = 89.5e9
	DefaultFearGreedIndex = 72

	ChartHistory   = 50
	ChartMaxVolume = 1e6
)

// PriceTicker drives a single crypto card: one price, ±1% every 3 to 5 seconds.
func PriceTicker(symbol string, price float64) Config {
	return Config{
		Name:        "ticker:" + symbol,
		MinInterval: 3 * time.Second,
		MaxInterval: 5 * time.Second,
		Fields: []Field{
			{Name: FieldPrice, Initial: price, Stepper: Multiplicative{MaxDelta: 0.01}},
		},
	}
}

// TradingPrice drives the trading view headline price: ±0.5% every 2 seconds.
func TradingPrice(price float64) Config {
	return Config{
		Name:        "trading",
		MinInterval: 2 * time.Second,
		MaxInterval: 2 * time.Second,
		Fields: []Field{
			{Name: FieldPrice, Initial: price, Stepper: Multiplicative{MaxDelta: 0.005}},
		},
	}
}

// ChartSeries drives the price chart. It starts with a pre-walked history of ±1% steps
// and then appends a ±0.5% point every 3 seconds, keeping the last 50.
func ChartSeries(price float64) Config {
	volume := Resample{Min: 0, Max: ChartMaxVolume}
	return Config{
		Name:        "chart",
		MinInterval: 3 * time.Second,
		MaxInterval: 3 * time.Second,
		Fields: []Field{
			{Name: FieldPrice, Initial: price, Stepper: Multiplicative{MaxDelta: 0.005}, SeedStepper: Multiplicative{MaxDelta: 0.01}},
			{Name: FieldVolume, Initial: 0, Stepper: volume},
		},
		History:   ChartHistory,
		SeedSteps: ChartHistory,
	}
}

// PortfolioValuation drives the portfolio total: ±0.25% every 3 seconds.
func PortfolioValuation(total float64) Config {
	return Config{
		Name:        "portfolio",
		MinInterval: 3 * time.Second,
		MaxInterval: 3 * time.Second,
		Fields: []Field{
			{Name: FieldTotalValue, Initial: total, Stepper: Multiplicative{MaxDelta: 0.0025}},
		},
	}
}

// MarketOverview drives the analytics headline numbers every 5 seconds.
func MarketOverview() Config {
	return Config{
		Name:        "market",
		MinInterval: 5 * time.Second,
		MaxInterval: 5 * time.Second,
		Fields: []Field{
			{Name: FieldTotalMarketCap, Initial: DefaultMarketCap, Stepper: Multiplicative{MaxDelta: 0.0005}},
			{Name: FieldTotalVolume, Initial: DefaultMarketVolume, Stepper: Multiplicative{MaxDelta: 0.01}},
			{Name: FieldFearGreedIndex, Initial: DefaultFearGreedIndex, Stepper: Additive{MaxStep: 1, Min: 0, Max: 100}},
		},
	}
}
