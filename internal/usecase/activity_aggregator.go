package usecase

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/alpha_tracker/internal/domain"
)

var errNegativeQuantity = errors.New("negative quantity")

// ActivityAggregator folds FILLED records into one summary per UTC day.
// It keeps no state between calls.
type ActivityAggregator struct {
	scoring domain.ScoringStrategy
}

func NewActivityAggregator(scoring domain.ScoringStrategy) *ActivityAggregator {
	return &ActivityAggregator{scoring: scoring}
}

func (a *ActivityAggregator) Scoring() domain.ScoringStrategy {
	return a.scoring
}

type dayBucket struct {
	date       time.Time
	buyQty     decimal.Decimal
	tradeCount int
}

// Aggregate groups FILLED records by the UTC day they occurred on. Only
// BUY volume qualifies; every FILLED trade counts toward TradeCount.
// Summaries come back oldest first. A malformed record fails the whole
// batch and nothing is returned.
func (a *ActivityAggregator) Aggregate(records []domain.ActivityRecord) ([]domain.DailySummary, error) {
	if a.scoring == nil {
		return nil, fmt.Errorf("%w: no scoring strategy selected", domain.ErrInvalidInput)
	}

	buckets := make(map[time.Time]*dayBucket)
	for _, r := range records {
		if err := validateRecord(r); err != nil {
			return nil, err
		}
		if r.Status != domain.OrderStatusFilled {
			continue
		}

		day := r.OccurredAt.UTC().Truncate(24 * time.Hour)
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{date: day, buyQty: decimal.Zero}
			buckets[day] = b
		}
		b.tradeCount++
		if r.Side == domain.SideBuy {
			b.buyQty = b.buyQty.Add(decimal.NewFromFloat(r.FilledQty))
		}
	}

	out := make([]domain.DailySummary, 0, len(buckets))
	for _, b := range buckets {
		qty := b.buyQty.InexactFloat64()
		out = append(out, domain.DailySummary{
			Date:               b.date,
			TotalQualifyingQty: qty,
			Points:             a.scoring.Points(qty),
			TradeCount:         b.tradeCount,
			Scoring:            a.scoring.Name(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func validateRecord(r domain.ActivityRecord) error {
	if r.OccurredAt.IsZero() {
		return &domain.MalformedRecordError{OrderID: r.ID, Field: "occurredAt"}
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"requestedQty", r.RequestedQty},
		{"filledQty", r.FilledQty},
		{"price", r.Price},
		{"quoteAmount", r.QuoteAmount},
	}
	for _, f := range fields {
		var cause error
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
		case f.value < 0:
			cause = errNegativeQuantity
		default:
			continue
		}
		return &domain.MalformedRecordError{
			OrderID: r.ID,
			Field:   f.name,
			Value:   strconv.FormatFloat(f.value, 'f', -1, 64),
			Err:     cause,
		}
	}
	return nil
}
