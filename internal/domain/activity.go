package domain

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderStatus string

const (
	OrderStatusFilled OrderStatus = "FILLED"
)

// ExchangeOrder is an order as the exchange reports it: quantities are
// decimal strings and times are epoch milliseconds. It is parsed into an
// ActivityRecord before any scoring happens.
type ExchangeOrder struct {
	OrderID             string `json:"orderId"`
	Symbol              string `json:"symbol"`
	Side                string `json:"side"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	Price               string `json:"price"`
	Status              string `json:"status"`
	Time                int64  `json:"time"`
	UpdateTime          int64  `json:"updateTime"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
}

// ActivityRecord is one validated exchange transaction.
type ActivityRecord struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	Side         Side        `json:"side"`
	RequestedQty float64     `json:"requestedQty"`
	FilledQty    float64     `json:"filledQty"`
	Price        float64     `json:"price"`
	Status       OrderStatus `json:"status"`
	OccurredAt   time.Time   `json:"occurredAt"`
	SettledAt    time.Time   `json:"settledAt"`
	QuoteAmount  float64     `json:"quoteAmount"`
}

// DailySummary aggregates one UTC calendar day of FILLED activity.
// Date is always midnight UTC.
type DailySummary struct {
	Date               time.Time `json:"date"`
	TotalQualifyingQty float64   `json:"totalQualifyingQty"`
	Points             float64   `json:"points"`
	TradeCount         int       `json:"tradeCount"`
	Scoring            string    `json:"scoring"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DateKey formats a day the way summaries are keyed.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// SyncResult reports one ingestion pass.
type SyncResult struct {
	RunID         string        `json:"runId"`
	FetchedOrders int           `json:"fetchedOrders"`
	NewTrades     int           `json:"newTrades"`
	UpdatedStats  int           `json:"updatedStats"`
	LatestPoints  float64       `json:"latestAlphaPoints"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
}

// StatsReport summarizes stored daily summaries over a window.
// CurrentLevel is the level reached by TotalBuyVolume, so it reflects the
// window only; older summaries never count toward it.
type StatsReport struct {
	TotalPoints    float64        `json:"totalAlphaPoints"`
	DailyStats     []DailySummary `json:"dailyStats"`
	TotalTrades    int            `json:"totalTrades"`
	TotalBuyVolume float64        `json:"totalBuyVolume"`
	AvgDailyPoints float64        `json:"avgDailyAlpha"`
	CurrentLevel   LevelStatus    `json:"currentLevel"`
}
