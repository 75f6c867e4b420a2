package domain

import (
	"context"
	"time"
)

// Exchange is the read-only ingestion side of the exchange.
type Exchange interface {
	Ping(ctx context.Context) error
	// FetchOrders returns orders created in [start, end). A zero end means
	// "up to now"; an empty symbol means every symbol the adapter tracks.
	FetchOrders(ctx context.Context, start, end time.Time, symbol string) ([]ExchangeOrder, error)
}

// ActivityRepository stores trades and daily summaries.
type ActivityRepository interface {
	// UpsertSummary writes s keyed by date and returns the row it replaced,
	// or nil when the date was new.
	UpsertSummary(ctx context.Context, s *DailySummary) (*DailySummary, error)
	// QuerySummariesSince returns summaries with Date >= since, oldest first.
	QuerySummariesSince(ctx context.Context, since time.Time) ([]*DailySummary, error)
	LatestSummary(ctx context.Context) (*DailySummary, error)

	// UpsertTrades writes records keyed by ID and returns how many were new.
	UpsertTrades(ctx context.Context, records []ActivityRecord) (int, error)
	ListTrades(ctx context.Context, limit int) ([]*ActivityRecord, error)
}

// ScoringStrategy turns a day's qualifying volume into points.
type ScoringStrategy interface {
	Name() string
	Points(qualifyingQty float64) float64
}
