package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"go.uber.org/zap"
)

// SyncBackend is the sync side of the API. A nil backend means the exchange
// credentials are not configured.
type SyncBackend interface {
	Sync(ctx context.Context) (*domain.SyncResult, error)
	Stats(ctx context.Context, days int) (*domain.StatsReport, error)
}

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	planner   *usecase.PlanService
	syncer    SyncBackend
	repo      domain.ActivityRepository
	hub       *SyncHub
	logger    *zap.Logger
	startedAt time.Time
	nextSync  func() time.Time
}

func NewServer(
	port int,
	planner *usecase.PlanService,
	syncer SyncBackend,
	repo domain.ActivityRepository,
	hub *SyncHub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		planner:   planner,
		syncer:    syncer,
		repo:      repo,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetNextSync lets /status report the scheduler's next run.
func (s *Server) SetNextSync(fn func() time.Time) {
	s.nextSync = fn
}

func (s *Server) routes() {
	// Planner
	s.router.HandleFunc("POST /api/calculate-plan", s.handleCalculatePlan)
	s.router.HandleFunc("GET /api/calculate-plan", s.handlePlanReference)
	s.router.HandleFunc("GET /api/levels", s.handleLevels)

	// Sync
	s.router.HandleFunc("POST /api/sync-alpha", s.handleSync)
	s.router.HandleFunc("GET /api/sync-alpha", s.handleStats)
	s.router.HandleFunc("GET /api/trades", s.handleTrades)
	s.router.HandleFunc("GET /ws/sync", s.handleSyncFeed)

	// Ops
	s.router.Handle("GET /metrics", promhttp.Handler())
	s.router.HandleFunc("GET /status", s.handleStatus)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
