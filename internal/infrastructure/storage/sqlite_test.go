package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/alpha_tracker/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestUpsertSummary_ReturnsPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &domain.DailySummary{Date: date(10), TotalQualifyingQty: 1.5, Points: 3, TradeCount: 2, Scoring: "linear"}
	prev, err := store.UpsertSummary(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.False(t, first.UpdatedAt.IsZero())

	second := &domain.DailySummary{Date: date(10), TotalQualifyingQty: 2.5, Points: 5, TradeCount: 3, Scoring: "linear"}
	prev, err = store.UpsertSummary(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 3.0, prev.Points)
	assert.Equal(t, 2, prev.TradeCount)
	assert.Equal(t, date(10), prev.Date)

	all, err := store.QuerySummariesSince(ctx, date(1))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 5.0, all[0].Points)
}

func TestUpsertSummary_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.UpsertSummary(ctx, &domain.DailySummary{Date: date(4), TotalQualifyingQty: 1, Points: 2, TradeCount: 1, Scoring: "linear"})
		require.NoError(t, err)
	}
	all, err := store.QuerySummariesSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2.0, all[0].Points)
	assert.Equal(t, 1, all[0].TradeCount)
}

func TestQuerySummariesSince_Ordered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []int{12, 3, 8, 20} {
		_, err := store.UpsertSummary(ctx, &domain.DailySummary{Date: date(d), Points: float64(d), Scoring: "linear"})
		require.NoError(t, err)
	}

	got, err := store.QuerySummariesSince(ctx, date(8))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, date(8), got[0].Date)
	assert.Equal(t, date(12), got[1].Date)
	assert.Equal(t, date(20), got[2].Date)

	latest, err := store.LatestSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.0, latest.Points)
}

func TestLatestSummary_Empty(t *testing.T) {
	store := newTestStore(t)
	latest, err := store.LatestSummary(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestUpsertTrades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, time.March, 10, 8, 30, 0, 0, time.UTC)

	records := []domain.ActivityRecord{
		{ID: "BNBUSDT:1", Symbol: "BNBUSDT", Side: domain.SideBuy, RequestedQty: 1, FilledQty: 1, Price: 600, Status: domain.OrderStatusFilled, OccurredAt: at, SettledAt: at, QuoteAmount: 600},
		{ID: "BNBUSDT:2", Symbol: "BNBUSDT", Side: domain.SideSell, RequestedQty: 1, FilledQty: 1, Price: 610, Status: domain.OrderStatusFilled, OccurredAt: at.Add(time.Hour), SettledAt: at.Add(time.Hour), QuoteAmount: 610},
	}

	added, err := store.UpsertTrades(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = store.UpsertTrades(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	trades, err := store.ListTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "BNBUSDT:2", trades[0].ID)
	assert.Equal(t, domain.SideSell, trades[0].Side)
	assert.Equal(t, at.Add(time.Hour), trades[0].OccurredAt)
	assert.Equal(t, domain.OrderStatusFilled, trades[1].Status)

	added, err = store.UpsertTrades(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSQLiteStore_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = store.UpsertSummary(context.Background(), &domain.DailySummary{Date: date(1), Points: 7, Scoring: "log_tier"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	latest, err := store.LatestSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, latest.Points)
	assert.Equal(t, "log_tier", latest.Scoring)
}
