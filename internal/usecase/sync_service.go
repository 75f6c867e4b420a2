package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/alpha_tracker/internal/domain"
	"go.uber.org/zap"
)

// DefaultLookback is how far back each sync pass reads exchange orders.
const DefaultLookback = 30 * 24 * time.Hour

var ErrSyncInProgress = errors.New("sync already in progress")

// SyncRecorder receives the outcome of every sync pass.
type SyncRecorder interface {
	ObserveSync(status string, elapsed time.Duration, result *domain.SyncResult)
}

// SyncListener is notified after a pass has been persisted.
type SyncListener interface {
	SyncCompleted(result *domain.SyncResult)
}

type SyncConfig struct {
	Symbols  []string
	Lookback time.Duration
}

// SyncService runs the ingestion pipeline: exchange -> parser ->
// aggregator -> store. Passes never overlap.
type SyncService struct {
	exchange   domain.Exchange
	repo       domain.ActivityRepository
	aggregator *ActivityAggregator
	engine     *LevelEngine
	recorder   SyncRecorder
	listeners  []SyncListener
	cfg        SyncConfig
	logger     *zap.Logger
	mu         sync.Mutex
	timeNow    func() time.Time // For testing
}

func NewSyncService(
	exchange domain.Exchange,
	repo domain.ActivityRepository,
	aggregator *ActivityAggregator,
	engine *LevelEngine,
	recorder SyncRecorder,
	cfg SyncConfig,
	logger *zap.Logger,
) *SyncService {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	return &SyncService{
		exchange:   exchange,
		repo:       repo,
		aggregator: aggregator,
		engine:     engine,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
		timeNow:    time.Now,
	}
}

// AddListener registers l for completed passes. Call before the first Sync.
func (s *SyncService) AddListener(l SyncListener) {
	s.listeners = append(s.listeners, l)
}

// Sync performs one ingestion pass. The window starts at UTC midnight so
// every day it touches is re-aggregated in full before being upserted.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncResult, error) {
	if !s.mu.TryLock() {
		s.observe("busy", 0, nil)
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	result := &domain.SyncResult{
		RunID:     uuid.NewString(),
		StartedAt: s.timeNow(),
	}
	log := s.logger.With(zap.String("run_id", result.RunID))
	if sc := s.aggregator.Scoring(); sc != nil {
		log = log.With(zap.String("scoring", sc.Name()))
	}
	log.Info("Starting alpha sync")

	if err := s.run(ctx, log, result); err != nil {
		result.Duration = s.timeNow().Sub(result.StartedAt)
		s.observe(syncStatus(err), result.Duration, result)
		log.Error("Alpha sync failed", zap.Error(err), zap.Duration("elapsed", result.Duration))
		return nil, err
	}

	result.Duration = s.timeNow().Sub(result.StartedAt)
	s.observe("ok", result.Duration, result)
	log.Info("Alpha sync completed",
		zap.Int("fetched_orders", result.FetchedOrders),
		zap.Int("new_trades", result.NewTrades),
		zap.Int("updated_stats", result.UpdatedStats),
		zap.Float64("latest_points", result.LatestPoints),
		zap.Duration("elapsed", result.Duration),
	)
	for _, l := range s.listeners {
		l.SyncCompleted(result)
	}
	return result, nil
}

func (s *SyncService) run(ctx context.Context, log *zap.Logger, result *domain.SyncResult) error {
	if err := s.exchange.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping exchange: %w", domain.ErrUpstreamUnavailable, err)
	}

	since := result.StartedAt.Add(-s.cfg.Lookback).UTC().Truncate(24 * time.Hour)
	symbols := s.cfg.Symbols
	if len(symbols) == 0 {
		symbols = []string{""}
	}

	var orders []domain.ExchangeOrder
	for _, sym := range symbols {
		fetched, err := s.exchange.FetchOrders(ctx, since, time.Time{}, sym)
		if err != nil {
			return fmt.Errorf("%w: fetch orders %q: %w", domain.ErrUpstreamUnavailable, sym, err)
		}
		log.Debug("Fetched orders", zap.String("symbol", sym), zap.Int("count", len(fetched)))
		orders = append(orders, fetched...)
	}
	result.FetchedOrders = len(orders)

	// Parse and aggregate the whole batch before anything is written.
	records, err := ParseOrders(orders)
	if err != nil {
		return fmt.Errorf("parse orders: %w", err)
	}
	records = dedupeRecords(records)
	summaries, err := s.aggregator.Aggregate(records)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	filled := make([]domain.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.Status == domain.OrderStatusFilled {
			filled = append(filled, r)
		}
	}
	log.Debug("Parsed orders", zap.Int("records", len(records)), zap.Int("filled", len(filled)))

	newTrades, err := s.repo.UpsertTrades(ctx, filled)
	if err != nil {
		return fmt.Errorf("%w: save trades: %w", domain.ErrUpstreamUnavailable, err)
	}
	result.NewTrades = newTrades

	for i := range summaries {
		prev, err := s.repo.UpsertSummary(ctx, &summaries[i])
		if err != nil {
			return fmt.Errorf("%w: save summary %s: %w", domain.ErrUpstreamUnavailable, domain.DateKey(summaries[i].Date), err)
		}
		if prev != nil && prev.Points != summaries[i].Points {
			log.Debug("Summary changed",
				zap.String("date", domain.DateKey(summaries[i].Date)),
				zap.Float64("old_points", prev.Points),
				zap.Float64("new_points", summaries[i].Points),
			)
		}
		result.UpdatedStats++
	}

	latest, err := s.repo.LatestSummary(ctx)
	if err != nil {
		return fmt.Errorf("%w: read latest summary: %w", domain.ErrUpstreamUnavailable, err)
	}
	if latest != nil {
		result.LatestPoints = latest.Points
	}
	return nil
}

// Stats reports stored summaries for the last days calendar days.
func (s *SyncService) Stats(ctx context.Context, days int) (*domain.StatsReport, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", domain.ErrInvalidInput)
	}
	since := s.timeNow().UTC().Truncate(24*time.Hour).AddDate(0, 0, -days)
	summaries, err := s.repo.QuerySummariesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: query summaries: %w", domain.ErrUpstreamUnavailable, err)
	}

	report := &domain.StatsReport{DailyStats: make([]domain.DailySummary, 0, len(summaries))}
	for _, sum := range summaries {
		report.DailyStats = append(report.DailyStats, *sum)
		report.TotalPoints += sum.Points
		report.TotalTrades += sum.TradeCount
		report.TotalBuyVolume += sum.TotalQualifyingQty
	}
	if len(summaries) > 0 {
		report.AvgDailyPoints = report.TotalPoints / float64(len(summaries))
	}
	// Level over the window's volume, matching the rolling activity view.
	report.CurrentLevel = s.engine.CurrentLevelInfo(report.TotalBuyVolume)
	return report, nil
}

func (s *SyncService) observe(status string, elapsed time.Duration, result *domain.SyncResult) {
	if s.recorder != nil {
		s.recorder.ObserveSync(status, elapsed, result)
	}
}

func syncStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedRecord):
		return "malformed"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_error"
	default:
		return "error"
	}
}

// dedupeRecords keeps the last occurrence of every record ID.
func dedupeRecords(records []domain.ActivityRecord) []domain.ActivityRecord {
	index := make(map[string]int, len(records))
	out := make([]domain.ActivityRecord, 0, len(records))
	for _, r := range records {
		if i, ok := index[r.ID]; ok {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}
