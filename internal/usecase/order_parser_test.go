package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
)

func exchangeOrder() domain.ExchangeOrder {
	return domain.ExchangeOrder{
		OrderID:             "BNBUSDT:1001",
		Symbol:              "BNBUSDT",
		Side:                "BUY",
		OrigQty:             "0.50000000",
		ExecutedQty:         "0.50000000",
		Price:               "612.40000000",
		Status:              "FILLED",
		Time:                1741600800000,
		UpdateTime:          1741600805000,
		CummulativeQuoteQty: "306.20000000",
	}
}

func TestParseOrder(t *testing.T) {
	rec, err := usecase.ParseOrder(exchangeOrder())
	require.NoError(t, err)

	assert.Equal(t, "BNBUSDT:1001", rec.ID)
	assert.Equal(t, domain.SideBuy, rec.Side)
	assert.Equal(t, domain.OrderStatusFilled, rec.Status)
	assert.Equal(t, 0.5, rec.RequestedQty)
	assert.Equal(t, 0.5, rec.FilledQty)
	assert.Equal(t, 612.4, rec.Price)
	assert.Equal(t, 306.2, rec.QuoteAmount)
	assert.Equal(t, time.UnixMilli(1741600800000).UTC(), rec.OccurredAt)
	assert.Equal(t, time.UnixMilli(1741600805000).UTC(), rec.SettledAt)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
}

func TestParseOrder_MissingUpdateTime(t *testing.T) {
	o := exchangeOrder()
	o.UpdateTime = 0
	rec, err := usecase.ParseOrder(o)
	require.NoError(t, err)
	assert.Equal(t, rec.OccurredAt, rec.SettledAt)
}

func TestParseOrder_LowercaseSide(t *testing.T) {
	o := exchangeOrder()
	o.Side = "sell"
	rec, err := usecase.ParseOrder(o)
	require.NoError(t, err)
	assert.Equal(t, domain.SideSell, rec.Side)
}

func TestParseOrder_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *domain.ExchangeOrder)
		field  string
	}{
		{"empty id", func(o *domain.ExchangeOrder) { o.OrderID = " " }, "orderId"},
		{"bad side", func(o *domain.ExchangeOrder) { o.Side = "HOLD" }, "side"},
		{"empty status", func(o *domain.ExchangeOrder) { o.Status = "" }, "status"},
		{"zero time", func(o *domain.ExchangeOrder) { o.Time = 0 }, "time"},
		{"negative update time", func(o *domain.ExchangeOrder) { o.UpdateTime = -1 }, "updateTime"},
		{"unparseable origQty", func(o *domain.ExchangeOrder) { o.OrigQty = "abc" }, "origQty"},
		{"empty executedQty", func(o *domain.ExchangeOrder) { o.ExecutedQty = "" }, "executedQty"},
		{"negative price", func(o *domain.ExchangeOrder) { o.Price = "-1" }, "price"},
		{"bad quote", func(o *domain.ExchangeOrder) { o.CummulativeQuoteQty = "1.2.3" }, "cummulativeQuoteQty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := exchangeOrder()
			tt.mutate(&o)
			_, err := usecase.ParseOrder(o)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedRecord))

			var mre *domain.MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, tt.field, mre.Field)
		})
	}
}

func TestParseOrders_AllOrNothing(t *testing.T) {
	bad := exchangeOrder()
	bad.OrderID = "BNBUSDT:1002"
	bad.ExecutedQty = "NaN?"

	records, err := usecase.ParseOrders([]domain.ExchangeOrder{exchangeOrder(), bad})
	assert.Nil(t, records)
	require.Error(t, err)

	var mre *domain.MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "BNBUSDT:1002", mre.OrderID)
}
