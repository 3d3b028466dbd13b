package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderSingleSeries(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store)

	orderID, series, err := svc.GenerateOrder(OrderRequest{
		Series:     1,
		StartSerie: 1,
		ColorMode:  ColorFixed,
		Color:      "#1976D2",
	}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(orderID, "ORD-"))

	require.Len(t, series, 1)
	assert.Equal(t, 1, series[0].Serie)
	require.Len(t, series[0].Cards, 6)

	// Order row written, then all six cards of serie 1.
	require.Len(t, store.orders, 1)
	assert.Equal(t, orderID, store.orders[0].OrderID)
	require.Len(t, store.cards, 6)

	seen := map[string]bool{}
	for i, c := range store.cards {
		assert.Equal(t, 1, c.Serie)
		assert.Equal(t, i+1, c.CardNumber)
		assert.Equal(t, "#1976D2", c.Color)
		assert.Equal(t, orderID, c.OrderID)
		assert.False(t, seen[c.Fingerprint], "fingerprints must be pairwise distinct")
		seen[c.Fingerprint] = true
	}
}

func TestGenerateOrderFourCardMode(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store)

	_, series, err := svc.GenerateOrder(OrderRequest{Series: 1, Mode: ModeFour}, nil)
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Len(t, series[0].Cards, 4)
	require.Len(t, store.cards, 4)

	for i, c := range store.cards {
		assert.Equal(t, i+1, c.CardNumber)
	}
}

func TestGenerateOrderCycleColors(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store)

	_, series, err := svc.GenerateOrder(OrderRequest{
		Series:     3,
		StartSerie: 10,
		ColorMode:  ColorCycle,
	}, nil)
	require.NoError(t, err)
	require.Len(t, series, 3)

	for i, s := range series {
		assert.Equal(t, 10+i, s.Serie)
		for _, c := range s.Cards {
			assert.Equal(t, paletteColor(i), c.Color)
		}
	}
}

func TestGenerateOrderIndependentStrategy(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store).WithStrategy(StrategyIndependent)

	_, series, err := svc.GenerateOrder(OrderRequest{Series: 2}, nil)
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Len(t, store.cards, 12)

	seen := map[string]bool{}
	for _, c := range store.cards {
		assert.False(t, seen[c.Fingerprint])
		seen[c.Fingerprint] = true
	}
}

func TestFlushRetriesOnInsertConflict(t *testing.T) {
	store := newFakeStore()
	store.insertConflicts = 2
	svc := NewOrderService(store)

	_, _, err := svc.GenerateOrder(OrderRequest{Series: 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, store.insertCalls, "two conflicted attempts plus the committed one")
	require.Len(t, store.cards, 6)

	seen := map[string]bool{}
	for _, c := range store.cards {
		assert.False(t, seen[c.Fingerprint], "committed set must hold no duplicate fingerprints")
		seen[c.Fingerprint] = true
	}
}

func TestFlushFailsAfterFiveConflicts(t *testing.T) {
	store := newFakeStore()
	store.insertConflicts = 5
	svc := NewOrderService(store)

	_, _, err := svc.GenerateOrder(OrderRequest{Series: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyConflicts)
	assert.Equal(t, 5, store.insertCalls)
	assert.Empty(t, store.cards, "a failed flush persists nothing")
}

func TestPreCheckRegeneratesCollidedSeries(t *testing.T) {
	store := newFakeStore()
	store.collideFirstCheck = true
	svc := NewOrderService(store)

	_, series, err := svc.GenerateOrder(OrderRequest{Series: 2, StartSerie: 1}, nil)
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Len(t, store.cards, 12)

	// The first pre-checked fingerprint belonged to serie 1, so serie 1 was
	// rebuilt and its colliding card must be gone from the committed set.
	collided := store.firstCheckFps[0]
	for _, c := range store.cards {
		assert.NotEqual(t, collided, c.Fingerprint)
	}

	// Serie 2 did not collide and was committed exactly as first generated.
	untouched := map[string]bool{}
	for _, fp := range store.firstCheckFps[6:] {
		untouched[fp] = true
	}
	for _, c := range store.cards {
		if c.Serie == 2 {
			assert.True(t, untouched[c.Fingerprint], "serie 2 must not be regenerated")
		}
	}

	// Returned series match what was committed, including the rebuilt one.
	for _, s := range series {
		stored, err := store.FindCardsBySeries(s.Serie)
		require.NoError(t, err)
		require.Len(t, s.Cards, len(stored))
		for i := range stored {
			assert.Equal(t, stored[i].Fingerprint, s.Cards[i].Fingerprint)
		}
	}
}

func TestStoreFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection refused")
	svc := NewOrderService(store)

	_, _, err := svc.GenerateOrder(OrderRequest{Series: 1}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooManyConflicts)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, store.insertCalls, "store failures are not retried")
}

func TestGenerateOrderChunked(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store)

	orderID, series, err := svc.GenerateOrder(OrderRequest{
		Series:     30,
		StartSerie: 5,
		Chunked:    true,
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	require.Len(t, series, 30)
	for i, s := range series {
		assert.Equal(t, 5+i, s.Serie)
	}
	assert.Len(t, store.cards, 180)
	assert.Len(t, store.orders, 2, "30 series split into 25+5 chunks, one order row each")
}

func TestProgressEvents(t *testing.T) {
	store := newFakeStore()
	svc := NewOrderService(store)

	var events []Progress
	_, _, err := svc.GenerateOrder(OrderRequest{Series: 3}, func(p Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	assert.Equal(t, "registering", events[0].Phase)
	assert.Equal(t, "completed", events[len(events)-1].Phase)
	assert.Equal(t, 100, events[len(events)-1].Percent)

	phases := map[string]bool{}
	for _, e := range events {
		phases[e.Phase] = true
	}
	assert.True(t, phases["generating"])
	assert.True(t, phases["saving"])
}

// paletteColor mirrors the cycle-mode color choice.
func paletteColor(i int) string {
	palette := []string{"#E65100", "#1976D2", "#2E2E2E", "#2E7D32", "#D32F2F", "#9C27B0"}
	return palette[i%len(palette)]
}
