package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type listCall struct {
	symbol     string
	start, end time.Time
	fromID     int64
}

type fakeOrderClient struct {
	orders  map[string][]*binance.Order
	calls   []listCall
	pingErr error
	listErr error
}

func (f *fakeOrderClient) Ping(ctx context.Context) error {
	return f.pingErr
}

// ListOrders mirrors allOrders: an id lookup ignores the time range.
func (f *fakeOrderClient) ListOrders(ctx context.Context, symbol string, start, end time.Time, fromID int64, limit int) ([]*binance.Order, error) {
	f.calls = append(f.calls, listCall{symbol: symbol, start: start, end: end, fromID: fromID})
	if f.listErr != nil {
		return nil, f.listErr
	}
	var page []*binance.Order
	for _, o := range f.orders[symbol] {
		match := o.Time >= start.UnixMilli() && o.Time <= end.UnixMilli()
		if fromID > 0 {
			match = o.OrderID >= fromID
		}
		if match {
			page = append(page, o)
			if len(page) == limit {
				break
			}
		}
	}
	return page, nil
}

func binanceOrder(symbol string, id int64, at time.Time) *binance.Order {
	return &binance.Order{
		Symbol:                   symbol,
		OrderID:                  id,
		Price:                    "600.00000000",
		OrigQuantity:             "1.00000000",
		ExecutedQuantity:         "1.00000000",
		CummulativeQuoteQuantity: "600.00000000",
		Status:                   binance.OrderStatusTypeFilled,
		Side:                     binance.SideTypeBuy,
		Time:                     at.UnixMilli(),
		UpdateTime:               at.Add(time.Second).UnixMilli(),
	}
}

var t0 = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestFetchOrders_SplitsIntoDayWindows(t *testing.T) {
	fake := &fakeOrderClient{orders: map[string][]*binance.Order{
		"BNBUSDT": {
			binanceOrder("BNBUSDT", 1, t0.Add(2*time.Hour)),
			binanceOrder("BNBUSDT", 2, t0.Add(30*time.Hour)),
			binanceOrder("BNBUSDT", 3, t0.Add(60*time.Hour)),
		},
	}}
	adapter := newBinanceAdapter(fake, []string{"BNBUSDT"}, zap.NewNop())

	orders, err := adapter.FetchOrders(context.Background(), t0, t0.Add(72*time.Hour), "")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Len(t, fake.calls, 3)
	for _, c := range fake.calls {
		assert.LessOrEqual(t, c.end.Sub(c.start), maxOrderWindow)
	}

	o := orders[0]
	assert.Equal(t, "BNBUSDT:1", o.OrderID)
	assert.Equal(t, "BUY", o.Side)
	assert.Equal(t, "FILLED", o.Status)
	assert.Equal(t, "1.00000000", o.ExecutedQty)
	assert.Equal(t, "600.00000000", o.CummulativeQuoteQty)
}

func TestFetchOrders_PagesFullWindows(t *testing.T) {
	var many []*binance.Order
	for i := 0; i < ordersPageSize+5; i++ {
		many = append(many, binanceOrder("ETHUSDT", int64(i), t0.Add(time.Duration(i)*time.Second)))
	}
	fake := &fakeOrderClient{orders: map[string][]*binance.Order{"ETHUSDT": many}}
	adapter := newBinanceAdapter(fake, nil, zap.NewNop())

	orders, err := adapter.FetchOrders(context.Background(), t0, t0.Add(time.Hour), "ETHUSDT")
	require.NoError(t, err)
	assert.Len(t, orders, ordersPageSize+5)
	assert.Len(t, fake.calls, 2)
	assert.Equal(t, fmt.Sprintf("ETHUSDT:%d", ordersPageSize+4), orders[len(orders)-1].OrderID)
	assert.Equal(t, int64(0), fake.calls[0].fromID)
	assert.Equal(t, int64(ordersPageSize), fake.calls[1].fromID)
}

func TestFetchOrders_PageBoundaryInsideOneMillisecond(t *testing.T) {
	at := t0.Add(10 * time.Minute)
	var burst []*binance.Order
	for i := 1; i <= ordersPageSize+5; i++ {
		burst = append(burst, binanceOrder("BNBUSDT", int64(i), at))
	}
	fake := &fakeOrderClient{orders: map[string][]*binance.Order{"BNBUSDT": burst}}
	adapter := newBinanceAdapter(fake, []string{"BNBUSDT"}, zap.NewNop())

	orders, err := adapter.FetchOrders(context.Background(), t0, t0.Add(time.Hour), "")
	require.NoError(t, err)
	require.Len(t, orders, ordersPageSize+5)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, int64(ordersPageSize+1), fake.calls[1].fromID)

	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		seen[o.OrderID] = true
	}
	assert.Len(t, seen, ordersPageSize+5)
	assert.Equal(t, fmt.Sprintf("BNBUSDT:%d", ordersPageSize+5), orders[len(orders)-1].OrderID)
}

func TestFetchOrders_IDPagesStopAtWindowEnd(t *testing.T) {
	var orders []*binance.Order
	for i := 1; i <= ordersPageSize; i++ {
		orders = append(orders, binanceOrder("BNBUSDT", int64(i), t0.Add(time.Minute)))
	}
	// Later ids spill into the next day window.
	orders = append(orders,
		binanceOrder("BNBUSDT", ordersPageSize+1, t0.Add(2*time.Minute)),
		binanceOrder("BNBUSDT", ordersPageSize+2, t0.Add(25*time.Hour)),
	)
	fake := &fakeOrderClient{orders: map[string][]*binance.Order{"BNBUSDT": orders}}
	adapter := newBinanceAdapter(fake, []string{"BNBUSDT"}, zap.NewNop())

	got, err := adapter.FetchOrders(context.Background(), t0, t0.Add(48*time.Hour), "")
	require.NoError(t, err)
	require.Len(t, got, ordersPageSize+2)

	counts := map[string]int{}
	for _, o := range got {
		counts[o.OrderID]++
	}
	assert.Equal(t, 1, counts[fmt.Sprintf("BNBUSDT:%d", ordersPageSize+2)])
	assert.Equal(t, 1, counts[fmt.Sprintf("BNBUSDT:%d", ordersPageSize+1)])
	// day 1: time page, id page; day 2: time page
	assert.Len(t, fake.calls, 3)
}

func TestFetchOrders_DefaultsEndToNow(t *testing.T) {
	fake := &fakeOrderClient{}
	adapter := newBinanceAdapter(fake, []string{"BNBUSDT", "ETHUSDT"}, zap.NewNop())
	adapter.timeNow = func() time.Time { return t0.Add(12 * time.Hour) }

	_, err := adapter.FetchOrders(context.Background(), t0, time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, "BNBUSDT", fake.calls[0].symbol)
	assert.Equal(t, "ETHUSDT", fake.calls[1].symbol)
	assert.Equal(t, t0.Add(12*time.Hour), fake.calls[0].end)
}

func TestFetchOrders_Errors(t *testing.T) {
	adapter := newBinanceAdapter(&fakeOrderClient{}, nil, zap.NewNop())
	_, err := adapter.FetchOrders(context.Background(), t0, t0.Add(time.Hour), "")
	assert.Error(t, err)

	boom := errors.New("418 I'm a teapot")
	adapter = newBinanceAdapter(&fakeOrderClient{listErr: boom}, []string{"BNBUSDT"}, zap.NewNop())
	_, err = adapter.FetchOrders(context.Background(), t0, t0.Add(time.Hour), "")
	assert.ErrorIs(t, err, boom)

	adapter = newBinanceAdapter(&fakeOrderClient{pingErr: boom}, nil, zap.NewNop())
	assert.ErrorIs(t, adapter.Ping(context.Background()), boom)
}

func TestNewBinanceAdapter_LeavesTestnetSwitchAlone(t *testing.T) {
	prev := binance.UseTestnet
	t.Cleanup(func() { binance.UseTestnet = prev })

	binance.UseTestnet = true
	adapter := NewBinanceAdapter("key", "secret", "", []string{"BNBUSDT"}, zap.NewNop())
	require.NotNil(t, adapter)
	assert.True(t, binance.UseTestnet)

	client := adapter.client.(*spotClient).client
	assert.Equal(t, binance.BaseAPITestnetURL, client.BaseURL)
}
