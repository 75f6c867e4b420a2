package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/vitos/alpha_tracker/internal/domain"
	"go.uber.org/zap"
)

const (
	// Binance rejects allOrders windows longer than a day.
	maxOrderWindow = 24 * time.Hour
	ordersPageSize = 1000
)

// orderClient is the slice of the Binance spot API the adapter uses.
type orderClient interface {
	Ping(ctx context.Context) error
	// ListOrders pages by order id when fromID > 0 and by time otherwise.
	ListOrders(ctx context.Context, symbol string, start, end time.Time, fromID int64, limit int) ([]*binance.Order, error)
}

type spotClient struct {
	client *binance.Client
}

func (c *spotClient) Ping(ctx context.Context) error {
	return c.client.NewPingService().Do(ctx)
}

func (c *spotClient) ListOrders(ctx context.Context, symbol string, start, end time.Time, fromID int64, limit int) ([]*binance.Order, error) {
	svc := c.client.NewListOrdersService().Symbol(symbol).Limit(limit)
	if fromID > 0 {
		// allOrders returns ids >= orderId in ascending order.
		return svc.OrderID(fromID).Do(ctx)
	}
	return svc.StartTime(start.UnixMilli()).EndTime(end.UnixMilli()).Do(ctx)
}

// BinanceAdapter reads spot order history. It never places orders.
type BinanceAdapter struct {
	client  orderClient
	symbols []string
	logger  *zap.Logger
	timeNow func() time.Time
}

// NewBinanceAdapter builds a read-only spot client. Testnet routing is the
// package-wide binance.UseTestnet switch, set once by the caller at startup.
func NewBinanceAdapter(apiKey, secretKey, baseURL string, symbols []string, logger *zap.Logger) *BinanceAdapter {
	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return newBinanceAdapter(&spotClient{client: client}, symbols, logger)
}

func newBinanceAdapter(client orderClient, symbols []string, logger *zap.Logger) *BinanceAdapter {
	return &BinanceAdapter{
		client:  client,
		symbols: symbols,
		logger:  logger,
		timeNow: time.Now,
	}
}

func (b *BinanceAdapter) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

// FetchOrders walks [start, end) in day-sized windows, paging each window
// until a short page comes back.
func (b *BinanceAdapter) FetchOrders(ctx context.Context, start, end time.Time, symbol string) ([]domain.ExchangeOrder, error) {
	if end.IsZero() {
		end = b.timeNow()
	}
	symbols := b.symbols
	if symbol != "" {
		symbols = []string{symbol}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}

	var out []domain.ExchangeOrder
	for _, sym := range symbols {
		for winStart := start; winStart.Before(end); winStart = winStart.Add(maxOrderWindow) {
			winEnd := winStart.Add(maxOrderWindow - time.Millisecond)
			if winEnd.After(end) {
				winEnd = end
			}
			orders, err := b.fetchWindow(ctx, sym, winStart, winEnd)
			if err != nil {
				return nil, err
			}
			out = append(out, orders...)
		}
	}
	return out, nil
}

// fetchWindow reads the first page by time, then continues by order id so
// orders sharing a millisecond across a page boundary are not skipped.
func (b *BinanceAdapter) fetchWindow(ctx context.Context, symbol string, start, end time.Time) ([]domain.ExchangeOrder, error) {
	var (
		out    []domain.ExchangeOrder
		fromID int64
	)
	startMs, endMs := start.UnixMilli(), end.UnixMilli()
	for {
		page, err := b.client.ListOrders(ctx, symbol, start, end, fromID, ordersPageSize)
		if err != nil {
			return nil, fmt.Errorf("list orders %s [%s, %s]: %w", symbol,
				start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), err)
		}
		pastEnd := false
		for _, o := range page {
			if o.Time > endMs {
				pastEnd = true
				continue
			}
			if o.Time < startMs {
				continue
			}
			out = append(out, toExchangeOrder(o))
		}
		if len(page) < ordersPageSize || pastEnd {
			return out, nil
		}

		next := page[len(page)-1].OrderID + 1
		if next <= fromID {
			return out, nil
		}
		b.logger.Debug("Paging orders", zap.String("symbol", symbol), zap.Int64("from_id", next))
		fromID = next
	}
}

func toExchangeOrder(o *binance.Order) domain.ExchangeOrder {
	return domain.ExchangeOrder{
		// Binance order ids are only unique per symbol.
		OrderID:             fmt.Sprintf("%s:%d", o.Symbol, o.OrderID),
		Symbol:              o.Symbol,
		Side:                string(o.Side),
		OrigQty:             o.OrigQuantity,
		ExecutedQty:         o.ExecutedQuantity,
		Price:               o.Price,
		Status:              string(o.Status),
		Time:                o.Time,
		UpdateTime:          o.UpdateTime,
		CummulativeQuoteQty: o.CummulativeQuoteQuantity,
	}
}
