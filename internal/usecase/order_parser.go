package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/alpha_tracker/internal/domain"
)

// ParseOrders validates raw exchange orders into activity records. The
// first malformed order aborts the batch with a *domain.MalformedRecordError.
func ParseOrders(orders []domain.ExchangeOrder) ([]domain.ActivityRecord, error) {
	records := make([]domain.ActivityRecord, 0, len(orders))
	for _, o := range orders {
		rec, err := ParseOrder(o)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func ParseOrder(o domain.ExchangeOrder) (domain.ActivityRecord, error) {
	malformed := func(field, value string, err error) (domain.ActivityRecord, error) {
		return domain.ActivityRecord{}, &domain.MalformedRecordError{OrderID: o.OrderID, Field: field, Value: value, Err: err}
	}

	if strings.TrimSpace(o.OrderID) == "" {
		return malformed("orderId", o.OrderID, nil)
	}
	side := domain.Side(strings.ToUpper(o.Side))
	if side != domain.SideBuy && side != domain.SideSell {
		return malformed("side", o.Side, nil)
	}
	if o.Status == "" {
		return malformed("status", o.Status, nil)
	}
	if o.Time <= 0 {
		return malformed("time", strconv.FormatInt(o.Time, 10), nil)
	}
	if o.UpdateTime < 0 {
		return malformed("updateTime", strconv.FormatInt(o.UpdateTime, 10), nil)
	}

	origQty, err := parseQuantity(o.OrigQty)
	if err != nil {
		return malformed("origQty", o.OrigQty, err)
	}
	executedQty, err := parseQuantity(o.ExecutedQty)
	if err != nil {
		return malformed("executedQty", o.ExecutedQty, err)
	}
	price, err := parseQuantity(o.Price)
	if err != nil {
		return malformed("price", o.Price, err)
	}
	quoteQty, err := parseQuantity(o.CummulativeQuoteQty)
	if err != nil {
		return malformed("cummulativeQuoteQty", o.CummulativeQuoteQty, err)
	}

	occurred := time.UnixMilli(o.Time).UTC()
	settled := occurred
	if o.UpdateTime > 0 {
		settled = time.UnixMilli(o.UpdateTime).UTC()
	}

	return domain.ActivityRecord{
		ID:           o.OrderID,
		Symbol:       o.Symbol,
		Side:         side,
		RequestedQty: origQty.InexactFloat64(),
		FilledQty:    executedQty.InexactFloat64(),
		Price:        price.InexactFloat64(),
		Status:       domain.OrderStatus(o.Status),
		OccurredAt:   occurred,
		SettledAt:    settled,
		QuoteAmount:  quoteQty.InexactFloat64(),
	}, nil
}

func parseQuantity(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativeQuantity
	}
	return d, nil
}
