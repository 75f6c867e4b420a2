package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"go.uber.org/zap"
)

// Syncer runs one activity sync.
type Syncer interface {
	Sync(ctx context.Context) (*domain.SyncResult, error)
}

// Scheduler triggers the activity sync on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	syncer  Syncer
	ctx     context.Context
	logger  *zap.Logger
	entryID cron.EntryID
}

// NewScheduler builds a seconds-precision cron in the given timezone
// ("" means UTC).
func NewScheduler(ctx context.Context, syncer Syncer, timezone string, logger *zap.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		syncer: syncer,
		ctx:    ctx,
		logger: logger,
	}, nil
}

// Register schedules the sync job. Expressions carry a leading seconds field.
func (s *Scheduler) Register(expr string) error {
	id, err := s.cron.AddFunc(expr, s.RunNow)
	if err != nil {
		return fmt.Errorf("register sync task %q: %w", expr, err)
	}
	s.entryID = id
	s.logger.Info("Sync task registered", zap.String("cron", expr))
	return nil
}

// Next reports when the sync job fires next; zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Time("next_run", s.Next()))
}

// Stop halts the cron and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow executes one sync immediately. Failures are logged, never fatal.
func (s *Scheduler) RunNow() {
	s.logger.Info("Running scheduled sync")
	res, err := s.syncer.Sync(s.ctx)
	switch {
	case errors.Is(err, usecase.ErrSyncInProgress):
		s.logger.Warn("Skipping sync, previous run still active")
	case err != nil:
		s.logger.Error("Scheduled sync failed", zap.Error(err))
	default:
		s.logger.Info("Scheduled sync finished",
			zap.String("run_id", res.RunID),
			zap.Int("fetched", res.FetchedOrders),
			zap.Int("new_trades", res.NewTrades),
			zap.Int("updated_days", res.UpdatedStats),
			zap.Float64("latest_points", res.LatestPoints),
		)
	}
}
