package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

func TestPurchaseTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPurchases()

	id, err := store.Create(ctx, 100, 7, decimal.NewFromInt(121_500))
	require.NoError(t, err)

	ok, err := store.TransitionStatus(ctx, id, entity.PurchasePending, entity.PurchaseCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already cancelled: a second transition from pending must lose.
	ok, err = store.TransitionStatus(ctx, id, entity.PurchasePending, entity.PurchaseCancelled)
	require.NoError(t, err)
	assert.False(t, ok)

	// Completing a cancelled purchase must also lose.
	ok, err = store.Complete(ctx, id, "https://example.test/sub/abc")
	require.NoError(t, err)
	assert.False(t, ok)

	pu, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entity.PurchaseCancelled, pu.Status)
	assert.Empty(t, pu.SubURL)
}

func TestCompleteRecordsSubURL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPurchases()

	id, err := store.Create(ctx, 100, 7, decimal.NewFromInt(50_000))
	require.NoError(t, err)

	ok, err := store.Complete(ctx, id, "https://example.test/sub/abc")
	require.NoError(t, err)
	require.True(t, ok)

	pu, _, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseCompleted, pu.Status)
	assert.Equal(t, "https://example.test/sub/abc", pu.SubURL)
}

func TestClaimTestAccountSingleWinner(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()
	require.NoError(t, users.Upsert(ctx, 55, "Alice", "alice"))

	const taps = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := users.ClaimTestAccount(ctx, 55)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	usr, _, err := users.Get(ctx, 55)
	require.NoError(t, err)
	assert.True(t, usr.UsedTestAccount)
}

func TestCatalogServerLookup(t *testing.T) {
	ctx := context.Background()
	cat := NewMemoryCatalog()
	cat.CountryRow[1] = entity.Country{ID: 1, Name: "Germany", Flag: "🇩🇪"}
	cat.ServerRows = append(cat.ServerRows,
		entity.Server{ID: 1, CountryID: 1, Platform: "xui", URL: "https://p1.test", Active: true},
		entity.Server{ID: 2, CountryID: 1, Platform: "hiddify", URL: "https://p2.test", Active: false},
	)

	s, ok, err := cat.Server(ctx, 1, "xui")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://p1.test", s.URL)

	// Inactive servers are invisible.
	_, ok, err = cat.Server(ctx, 1, "hiddify")
	require.NoError(t, err)
	assert.False(t, ok)

	countries, err := cat.CountriesForPlatform(ctx, "xui")
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "Germany", countries[0].Name)
}
