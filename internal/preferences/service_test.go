package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/bissquit/cryptodefi/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) ([]byte, error) { return nil, b.err }
func (b brokenStore) Set(context.Context, string, []byte) error   { return b.err }
func (b brokenStore) Delete(context.Context, string) error        { return b.err }

func TestService_WatchlistDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		saved string
	}{
		{"absent", ""},
		{"corrupt", "[BTC"},
		{"wrong type", `{"BTC":1}`},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			if tt.saved != "" {
				require.NoError(t, store.Set(ctx, WatchlistKey, []byte(tt.saved)))
			}

			s := NewService(store)
			assert.Equal(t, []string{"BTC", "ETH", "BNB", "ADA"}, s.LoadWatchlist(ctx))
		})
	}
}

func TestService_WatchlistRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.New())

	saved, err := s.SaveWatchlist(ctx, []string{"SOL", "BTC", "SOL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL", "BTC"}, saved)
	assert.Equal(t, []string{"SOL", "BTC"}, s.LoadWatchlist(ctx))

	_, err = s.SaveWatchlist(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, s.LoadWatchlist(ctx))
}

func TestService_Preferences(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := NewService(store)

	assert.Equal(t, map[string]any{}, s.LoadPreferences(ctx))

	require.NoError(t, s.SavePreferences(ctx, map[string]any{"theme": "dark", "currency": "USD"}))
	assert.Equal(t, map[string]any{"theme": "dark", "currency": "USD"}, s.LoadPreferences(ctx))

	require.NoError(t, store.Set(ctx, PreferencesKey, []byte("not json")))
	assert.Equal(t, map[string]any{}, s.LoadPreferences(ctx))
}

func TestService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	s := NewService(brokenStore{err: errors.New("disk gone")})

	assert.Equal(t, DefaultWatchlist(), s.LoadWatchlist(ctx))
	assert.Equal(t, map[string]any{}, s.LoadPreferences(ctx))

	_, err := s.SaveWatchlist(ctx, []string{"BTC"})
	assert.Error(t, err)
	assert.Error(t, s.SavePreferences(ctx, map[string]any{}))
}
