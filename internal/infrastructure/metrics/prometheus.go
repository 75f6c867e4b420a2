package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vitos/alpha_tracker/internal/domain"
)

// SyncMetrics exports sync pipeline outcomes to Prometheus.
type SyncMetrics struct {
	runs          *prometheus.CounterVec
	duration      prometheus.Histogram
	fetchedOrders prometheus.Counter
	newTrades     prometheus.Counter
	updatedDays   prometheus.Counter
	latestPoints  prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// NewSyncMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_sync_runs_total",
				Help: "Sync passes by outcome",
			},
			[]string{"status"}, // ok, busy, malformed, upstream_error, error
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alpha_sync_duration_seconds",
				Help:    "Duration of sync passes",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		fetchedOrders: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "alpha_sync_fetched_orders_total",
				Help: "Exchange orders fetched by successful passes",
			},
		),
		newTrades: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "alpha_sync_new_trades_total",
				Help: "FILLED trades stored for the first time",
			},
		),
		updatedDays: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "alpha_sync_updated_days_total",
				Help: "Daily summaries upserted",
			},
		),
		latestPoints: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "alpha_latest_points",
				Help: "Points of the most recent stored day",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "alpha_sync_last_success_timestamp_seconds",
				Help: "Unix time of the last successful pass",
			},
		),
	}
}

func (m *SyncMetrics) ObserveSync(status string, elapsed time.Duration, result *domain.SyncResult) {
	m.runs.WithLabelValues(status).Inc()
	if status == "busy" {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	if status != "ok" || result == nil {
		return
	}
	m.fetchedOrders.Add(float64(result.FetchedOrders))
	m.newTrades.Add(float64(result.NewTrades))
	m.updatedDays.Add(float64(result.UpdatedStats))
	m.latestPoints.Set(result.LatestPoints)
	m.lastSuccess.Set(float64(result.StartedAt.Add(result.Duration).Unix()))
}
