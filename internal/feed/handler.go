package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/bissquit/cryptodefi/internal/pkg/ctxlog"
	"github.com/bissquit/cryptodefi/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// DefaultSymbol is streamed when a price feed is requested without ?symbol=.
const DefaultSymbol = "BTC"

var (
	// ErrUnknownSymbol is returned for a symbol with no reference price.
	ErrUnknownSymbol = errors.New("unknown symbol")

	errAccessRevoked = errors.New("feed access revoked")
)

// PriceLookup resolves the reference price a price feed starts from.
type PriceLookup interface {
	Price(symbol string) (float64, bool)
}

// Source describes a streamable feed. An empty Permission makes it public.
type Source struct {
	Permission domain.Permission
	Build      func(r *http.Request) (Config, error)
}

// Handler streams feeds as Server-Sent Events. Every connection mounts its own
// generator, which lives exactly as long as the request.
type Handler struct {
	viewer  gate.Viewer
	sources map[string]Source
	opts    []Option

	done      chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a feed handler with the dashboard feeds registered.
func NewHandler(viewer gate.Viewer, prices PriceLookup, opts ...Option) *Handler {
	h := &Handler{
		viewer:  viewer,
		sources: make(map[string]Source),
		opts:    opts,
		done:    make(chan struct{}),
	}

	h.Register("ticker", Source{Build: func(r *http.Request) (Config, error) {
		symbol, price, err := symbolPrice(r, prices)
		if err != nil {
			return Config{}, err
		}
		return PriceTicker(symbol, price), nil
	}})
	h.Register("trading", Source{Permission: domain.PermissionTrading, Build: func(r *http.Request) (Config, error) {
		_, price, err := symbolPrice(r, prices)
		if err != nil {
			return Config{}, err
		}
		return TradingPrice(price), nil
	}})
	h.Register("chart", Source{Permission: domain.PermissionTrading, Build: func(r *http.Request) (Config, error) {
		_, price, err := symbolPrice(r, prices)
		if err != nil {
			return Config{}, err
		}
		return ChartSeries(price), nil
	}})
	h.Register("portfolio", Source{Permission: domain.PermissionWallet, Build: func(*http.Request) (Config, error) {
		return PortfolioValuation(DefaultPortfolioValue), nil
	}})
	h.Register("market", Source{Permission: domain.PermissionAnalytics, Build: func(*http.Request) (Config, error) {
		return MarketOverview(), nil
	}})

	return h
}

// Register adds or replaces a feed.
func (h *Handler) Register(name string, src Source) {
	h.sources[name] = src
}

// Close ends every open stream. Streams opened afterwards end right after their
// first event.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// RegisterRoutes registers feed routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/feeds/{feed}", h.Stream)
}

// Stream handles GET /feeds/{feed}.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feed")
	src, ok := h.sources[name]
	if !ok {
		httputil.Error(w, http.StatusNotFound, "feed not found")
		return
	}

	if decision := h.evaluate(src); !decision.Allowed() {
		httputil.Denied(w, decision)
		return
	}

	config, err := src.Build(r)
	if err != nil {
		if errors.Is(err, ErrUnknownSymbol) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	g, err := New(config, h.opts...)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	httputil.StartEvents(w)

	streamCtx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-h.done:
			cancel()
		case <-streamCtx.Done():
		}
	}()

	ctx := ctxlog.With(streamCtx, "feed", config.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("feed mounted")

	err = Run(ctx, g, func(s Snapshot) error {
		// Logging out or losing the permission unmounts the feed.
		if !h.evaluate(src).Allowed() {
			return errAccessRevoked
		}
		if err := httputil.Event(w, s.Seq, "update", s); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, errAccessRevoked) {
		logger.Debug("feed stream ended", "error", err)
		return
	}
	logger.Debug("feed unmounted")
}

func (h *Handler) evaluate(src Source) gate.Decision {
	if src.Permission == "" {
		return gate.Decision{Outcome: gate.OutcomeContent}
	}
	return gate.EvaluateRoute(gate.SubjectOf(h.viewer), src.Permission, false)
}

func symbolPrice(r *http.Request, prices PriceLookup) (string, float64, error) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		symbol = DefaultSymbol
	}
	price, ok := prices.Price(symbol)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return symbol, price, nil
}
