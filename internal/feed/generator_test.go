package feed

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() Option {
	return WithRand(rand.New(rand.NewPCG(1, 2)))
}

func fastConfig() Config {
	return Config{
		Name:        "test",
		MinInterval: 5 * time.Millisecond,
		MaxInterval: 5 * time.Millisecond,
		Fields: []Field{
			{Name: FieldPrice, Initial: 100, Stepper: Multiplicative{MaxDelta: 0.01}},
		},
	}
}

func TestSteppers_Bounded(t *testing.T) {
	for _, u := range []float64{-1, -0.5, 0, 0.5, 0.999, 5, -5} {
		m := Multiplicative{MaxDelta: 0.01}.Step(100, u)
		assert.GreaterOrEqual(t, m, 99.0)
		assert.LessOrEqual(t, m, 101.0)

		a := Additive{MaxStep: 1, Min: 0, Max: 100}.Step(99.5, u)
		assert.GreaterOrEqual(t, a, 98.5)
		assert.LessOrEqual(t, a, 100.0)

		r := Resample{Min: 0, Max: 1e6}.Step(42, u)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1e6)
	}

	assert.Equal(t, 0.0, Additive{MaxStep: 1, Min: 0, Max: 100}.Step(0.2, -1))
}

func TestConfig_Validate(t *testing.T) {
	valid := fastConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"zero interval", func(c *Config) { c.MinInterval = 0 }},
		{"inverted band", func(c *Config) { c.MaxInterval = time.Millisecond }},
		{"no fields", func(c *Config) { c.Fields = nil }},
		{"nil stepper", func(c *Config) { c.Fields[0].Stepper = nil }},
		{"duplicate field", func(c *Config) { c.Fields = append(c.Fields, c.Fields[0]) }},
		{"negative history", func(c *Config) { c.History = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fastConfig()
			tt.modify(&c)
			err := c.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestPresets_Valid(t *testing.T) {
	for _, c := range []Config{
		PriceTicker("BTC", 45234.67),
		TradingPrice(DefaultTradingPrice),
		ChartSeries(DefaultTradingPrice),
		PortfolioValuation(DefaultPortfolioValue),
		MarketOverview(),
	} {
		assert.NoError(t, c.Validate(), c.Name)
	}
}

func TestPriceTicker_BoundedOverManyCycles(t *testing.T) {
	g, err := New(PriceTicker("BTC", 45234.67), seeded())
	require.NoError(t, err)

	prev := g.Snapshot().Values[FieldPrice]
	for i := 0; i < 1000; i++ {
		next := g.Step().Values[FieldPrice]
		assert.LessOrEqual(t, math.Abs(next-prev), 0.01*prev+1e-9, "cycle %d", i)
		prev = next
	}
}

func TestMarketOverview_FearGreedStaysInRange(t *testing.T) {
	g, err := New(MarketOverview(), seeded())
	require.NoError(t, err)

	prev := g.Snapshot().Values
	for i := 0; i < 2000; i++ {
		next := g.Step().Values

		fg := next[FieldFearGreedIndex]
		assert.GreaterOrEqual(t, fg, 0.0)
		assert.LessOrEqual(t, fg, 100.0)
		assert.LessOrEqual(t, math.Abs(fg-prev[FieldFearGreedIndex]), 1.0+1e-9)

		assert.LessOrEqual(t, math.Abs(next[FieldTotalMarketCap]-prev[FieldTotalMarketCap]), 0.0005*prev[FieldTotalMarketCap]+1e-3)
		assert.LessOrEqual(t, math.Abs(next[FieldTotalVolume]-prev[FieldTotalVolume]), 0.01*prev[FieldTotalVolume]+1e-3)
		prev = next
	}
}

func TestChartSeries_SeededAndCapped(t *testing.T) {
	g, err := New(ChartSeries(DefaultTradingPrice), seeded())
	require.NoError(t, err)

	s := g.Snapshot()
	require.Len(t, s.History, ChartHistory)
	assert.Equal(t, s.Values, s.History[len(s.History)-1].Values)

	for i := 0; i < 10; i++ {
		s = g.Step()
	}
	require.Len(t, s.History, ChartHistory)
	assert.Equal(t, uint64(10), s.Seq)
	for _, p := range s.History {
		assert.GreaterOrEqual(t, p.Values[FieldVolume], 0.0)
		assert.LessOrEqual(t, p.Values[FieldVolume], ChartMaxVolume)
	}
}

func TestGenerator_IntervalDrawnFromBand(t *testing.T) {
	for i := 0; i < 20; i++ {
		g, err := New(PriceTicker("BTC", 1))
		require.NoError(t, err)
		assert.Zero(t, g.Interval())

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, g.Start(ctx))
		interval := g.Interval()
		assert.GreaterOrEqual(t, interval, 3*time.Second)
		assert.LessOrEqual(t, interval, 5*time.Second)

		g.Stop()
		cancel()
	}
}

func TestGenerator_StartStop(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)

	require.NoError(t, g.Start(context.Background()))
	assert.ErrorIs(t, g.Start(context.Background()), ErrAlreadyStarted)

	select {
	case s := <-g.Updates():
		assert.Positive(t, s.Seq)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	g.Stop()
	g.Stop()

	// Drain whatever was buffered before the stop; nothing arrives afterwards.
	select {
	case <-g.Updates():
	default:
	}
	seq := g.Snapshot().Seq
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seq, g.Snapshot().Seq)
}

func TestGenerator_StopBeforeStart(t *testing.T) {
	g, err := New(fastConfig())
	require.NoError(t, err)
	g.Stop()
}

func TestGenerator_ContextCancelStops(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, g.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		g.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("generator did not stop after cancel")
	}
}

func TestGenerator_SlowReaderDoesNotBlock(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)
	require.NoError(t, g.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	g.Stop()

	s := <-g.Updates()
	assert.Greater(t, s.Seq, uint64(1), "latest value should have replaced older ones")
}

func TestRun_StopsOnContextDone(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var received int
	err = Run(ctx, g, func(s Snapshot) error {
		received++
		if received == 3 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, received, 3)

	seq := g.Snapshot().Seq
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seq, g.Snapshot().Seq)
}

func TestRun_FirstDeliveryIsCurrentSnapshot(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)

	stop := errors.New("stop")
	var first Snapshot
	err = Run(context.Background(), g, func(s Snapshot) error {
		first = s
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Zero(t, first.Seq)
	assert.Equal(t, 100.0, first.Values[FieldPrice])
}

func TestRun_StopsOnPanic(t *testing.T) {
	g, err := New(fastConfig(), seeded())
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = Run(context.Background(), g, func(Snapshot) error {
			panic("render failed")
		})
	})

	seq := g.Snapshot().Seq
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seq, g.Snapshot().Seq)
}
