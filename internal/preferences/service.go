// Package preferences persists the watchlist and free-form UI preferences.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bissquit/cryptodefi/internal/storage"
)

// Storage keys.
const (
	WatchlistKey   = "cryptodefi_watchlist"
	PreferencesKey = "cryptodefi_preferences"
)

// DefaultWatchlist is returned when nothing usable is stored.
func DefaultWatchlist() []string {
	return []string{"BTC", "ETH", "BNB", "ADA"}
}

// Service reads and writes preferences. Reads never fail: missing, unreadable or
// corrupt data falls back to the defaults.
type Service struct {
	store storage.Store
}

// NewService creates a new preferences service.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// LoadWatchlist returns the saved watchlist or the default one.
func (s *Service) LoadWatchlist(ctx context.Context) []string {
	var symbols []string
	if !s.load(ctx, WatchlistKey, &symbols) || symbols == nil {
		return DefaultWatchlist()
	}
	return symbols
}

// SaveWatchlist stores symbols, dropping repeats while keeping order.
func (s *Service) SaveWatchlist(ctx context.Context, symbols []string) ([]string, error) {
	unique := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if !slices.Contains(unique, sym) {
			unique = append(unique, sym)
		}
	}
	if err := s.save(ctx, WatchlistKey, unique); err != nil {
		return nil, err
	}
	return unique, nil
}

// LoadPreferences returns the saved preferences or an empty set.
func (s *Service) LoadPreferences(ctx context.Context) map[string]any {
	var prefs map[string]any
	if !s.load(ctx, PreferencesKey, &prefs) || prefs == nil {
		return map[string]any{}
	}
	return prefs
}

// SavePreferences replaces the stored preferences.
func (s *Service) SavePreferences(ctx context.Context, prefs map[string]any) error {
	if prefs == nil {
		prefs = map[string]any{}
	}
	return s.save(ctx, PreferencesKey, prefs)
}

func (s *Service) load(ctx context.Context, key string, v any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		slog.Warn("failed to read preferences", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("ignoring corrupt preferences", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
