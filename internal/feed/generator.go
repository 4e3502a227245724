// Package feed simulates live market values: each generator is a cancelable periodic
// task that nudges a few numbers by small bounded random steps.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Generator errors.
var (
	ErrInvalidConfig  = errors.New("invalid feed config")
	ErrAlreadyStarted = errors.New("feed generator already started")
)

// Field is one simulated number.
type Field struct {
	Name    string
	Initial float64
	Stepper Stepper
	// SeedStepper is used while pre-filling history; Stepper is used when nil.
	SeedStepper Stepper
}

// Config describes a generator.
type Config struct {
	Name        string
	MinInterval time.Duration
	MaxInterval time.Duration
	Fields      []Field
	// History is how many past points are kept; 0 keeps none.
	History int
	// SeedSteps pre-fills history with that many steps walked from the initial values.
	SeedSteps int
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.MinInterval <= 0 || c.MaxInterval < c.MinInterval {
		return fmt.Errorf("%w: %s: interval band [%s, %s]", ErrInvalidConfig, c.Name, c.MinInterval, c.MaxInterval)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: %s: no fields", ErrInvalidConfig, c.Name)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: %s: field names must be unique and non-empty", ErrInvalidConfig, c.Name)
		}
		if f.Stepper == nil {
			return fmt.Errorf("%w: %s: field %s has no stepper", ErrInvalidConfig, c.Name, f.Name)
		}
		seen[f.Name] = true
	}
	if c.History < 0 || c.SeedSteps < 0 {
		return fmt.Errorf("%w: %s: negative history", ErrInvalidConfig, c.Name)
	}
	return nil
}

// Point is one set of values at a moment.
type Point struct {
	At     time.Time          `json:"at"`
	Values map[string]float64 `json:"values"`
}

// Snapshot is what a consumer renders.
type Snapshot struct {
	Feed    string             `json:"feed"`
	Seq     uint64             `json:"seq"`
	At      time.Time          `json:"at"`
	Values  map[string]float64 `json:"values"`
	History []Point            `json:"history,omitempty"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. The generator owns it afterwards, so one source
// must not be shared between generators.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// Generator perturbs its fields on a timer until stopped.
type Generator struct {
	config Config
	now    func() time.Time

	mu       sync.Mutex
	rnd      *rand.Rand
	values   []float64
	history  []Point
	seq      uint64
	started  bool
	interval time.Duration

	updates  chan Snapshot
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a generator. It does nothing until Start.
func New(config Config, opts ...Option) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		config:  config,
		now:     time.Now,
		updates: make(chan Snapshot, 1),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g.values = make([]float64, len(config.Fields))
	for i, f := range config.Fields {
		g.values[i] = f.Initial
	}
	g.seed()

	return g, nil
}

// seed walks SeedSteps points backwards in time so the newest one is "now".
func (g *Generator) seed() {
	if g.config.SeedSteps == 0 {
		return
	}

	now := g.now()
	for i := g.config.SeedSteps - 1; i >= 0; i-- {
		for j, f := range g.config.Fields {
			stepper := f.SeedStepper
			if stepper == nil {
				stepper = f.Stepper
			}
			g.values[j] = stepper.Step(g.values[j], g.unit())
		}
		g.record(now.Add(-time.Duration(i) * g.config.MaxInterval))
	}
}

// Start launches the timer. The task ends on Stop or when ctx is done.
func (g *Generator) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.started = true
	g.interval = g.pickInterval()
	interval := g.interval
	g.mu.Unlock()

	slog.Debug("feed generator started", "feed", g.config.Name, "interval", interval)
	activeGenerators.WithLabelValues(g.config.Name).Inc()

	g.wg.Add(1)
	go g.run(ctx, interval)
	return nil
}

// Stop cancels the timer and waits for the task to exit. It is safe to call more
// than once and before Start.
func (g *Generator) Stop() {
	g.stopOnce.Do(func() { close(g.stopCh) })
	g.wg.Wait()
}

func (g *Generator) run(ctx context.Context, interval time.Duration) {
	defer g.wg.Done()
	defer activeGenerators.WithLabelValues(g.config.Name).Dec()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("feed generator stopped", "feed", g.config.Name, "reason", "context")
			return
		case <-g.stopCh:
			slog.Debug("feed generator stopped", "feed", g.config.Name, "reason", "stop")
			return
		case <-ticker.C:
			g.publish(g.Step())
		}
	}
}

// Step applies one cycle synchronously and returns the new snapshot.
func (g *Generator) Step() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, f := range g.config.Fields {
		g.values[i] = f.Stepper.Step(g.values[i], g.unit())
	}
	g.seq++
	at := g.now()
	g.record(at)

	feedTicks.WithLabelValues(g.config.Name).Inc()
	return g.snapshotLocked(at)
}

// Snapshot returns the current values without stepping.
func (g *Generator) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(g.now())
}

// Updates delivers the latest snapshot after each tick. A slow reader only ever
// sees the most recent value; the timer never waits for it.
func (g *Generator) Updates() <-chan Snapshot {
	return g.updates
}

// Interval returns the tick interval chosen at Start, or 0 before Start.
func (g *Generator) Interval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.interval
}

// Name returns the feed name.
func (g *Generator) Name() string {
	return g.config.Name
}

func (g *Generator) publish(s Snapshot) {
	select {
	case g.updates <- s:
		return
	default:
	}
	// Drop the stale value the reader has not picked up yet.
	select {
	case <-g.updates:
	default:
	}
	select {
	case g.updates <- s:
	default:
	}
}

func (g *Generator) pickInterval() time.Duration {
	band := g.config.MaxInterval - g.config.MinInterval
	if band <= 0 {
		return g.config.MinInterval
	}
	return g.config.MinInterval + time.Duration(g.rnd.Int64N(int64(band)+1))
}

// unit draws from [-1, 1). Callers hold mu (or own g exclusively).
func (g *Generator) unit() float64 {
	return g.rnd.Float64()*2 - 1
}

func (g *Generator) record(at time.Time) {
	if g.config.History == 0 {
		return
	}
	g.history = append(g.history, Point{At: at, Values: g.valuesMap()})
	if over := len(g.history) - g.config.History; over > 0 {
		g.history = append(g.history[:0:0], g.history[over:]...)
	}
}

func (g *Generator) valuesMap() map[string]float64 {
	m := make(map[string]float64, len(g.values))
	for i, f := range g.config.Fields {
		m[f.Name] = g.values[i]
	}
	return m
}

func (g *Generator) snapshotLocked(at time.Time) Snapshot {
	s := Snapshot{
		Feed:   g.config.Name,
		Seq:    g.seq,
		At:     at,
		Values: g.valuesMap(),
	}
	if len(g.history) > 0 {
		s.History = append([]Point(nil), g.history...)
	}
	return s
}

// Run mounts g for the lifetime of ctx: it starts the timer, hands the current
// snapshot and then every update to fn, and always stops the timer on the way out,
// whether ctx ends, fn fails or fn panics.
func Run(ctx context.Context, g *Generator, fn func(Snapshot) error) error {
	if err := g.Start(ctx); err != nil {
		return err
	}
	defer g.Stop()

	if err := fn(g.Snapshot()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-g.Updates():
			if err := fn(s); err != nil {
				return err
			}
		}
	}
}
