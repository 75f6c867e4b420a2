package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"go.uber.org/zap"
)

type fakeSyncer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSyncer) Sync(ctx context.Context) (*domain.SyncResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SyncResult{RunID: "run-1", FetchedOrders: 3, NewTrades: 2, UpdatedStats: 1, LatestPoints: 4}, nil
}

func TestRunNow(t *testing.T) {
	for _, err := range []error{nil, usecase.ErrSyncInProgress, errors.New("boom")} {
		syncer := &fakeSyncer{err: err}
		s, serr := NewScheduler(context.Background(), syncer, "", zap.NewNop())
		require.NoError(t, serr)

		assert.NotPanics(t, s.RunNow)
		assert.Equal(t, int32(1), syncer.calls.Load())
	}
}

func TestRegister(t *testing.T) {
	s, err := NewScheduler(context.Background(), &fakeSyncer{}, "Asia/Shanghai", zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, s.Register("not a cron"))
	// Five-field expressions are rejected since the parser expects seconds.
	assert.Error(t, s.Register("0 9,21 * * *"))

	require.NoError(t, s.Register("0 0 9,21 * * *"))
	s.Start()
	defer s.Stop()

	next := s.Next()
	require.False(t, next.IsZero())
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	local := next.In(shanghai)
	assert.Contains(t, []int{9, 21}, local.Hour())
	assert.Zero(t, local.Minute())
}

func TestScheduledRunFires(t *testing.T) {
	syncer := &fakeSyncer{}
	s, err := NewScheduler(context.Background(), syncer, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Register("* * * * * *"))

	s.Start()
	assert.Eventually(t, func() bool { return syncer.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	_, err := NewScheduler(context.Background(), &fakeSyncer{}, "Mars/Olympus", zap.NewNop())
	assert.Error(t, err)
}
