package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitos/alpha_tracker/internal/config"
	"github.com/vitos/alpha_tracker/internal/infrastructure/exchange"
	"github.com/vitos/alpha_tracker/internal/infrastructure/logger"
	"github.com/vitos/alpha_tracker/internal/infrastructure/metrics"
	"github.com/vitos/alpha_tracker/internal/infrastructure/storage"
	"github.com/vitos/alpha_tracker/internal/scheduler"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"github.com/vitos/alpha_tracker/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Encoding)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create data dir", zap.Error(err))
		}
	}
	store, err := storage.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Planner
	engine := usecase.NewLevelEngine()
	optimizer := usecase.NewPlanOptimizer(engine, cfg.Planner.LeverageFactor)
	planner := usecase.NewPlanService(engine, optimizer, cfg.Planner.DailyTradeCap)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := web.NewSyncHub(log)
	go hub.Run(ctx)

	// 5. Init Sync (only with exchange credentials)
	var (
		syncer web.SyncBackend
		sched  *scheduler.Scheduler
	)
	if cfg.HasCredentials() {
		scoring, err := usecase.NewScoringStrategy(cfg.Scoring.Strategy, cfg.Scoring.PointsPerUnit)
		if err != nil {
			log.Fatal("Invalid scoring strategy", zap.Error(err))
		}
		binance.UseTestnet = cfg.Binance.Testnet
		adapter := exchange.NewBinanceAdapter(
			cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.BaseURL,
			cfg.Binance.Symbols, log,
		)
		syncService := usecase.NewSyncService(
			adapter, store,
			usecase.NewActivityAggregator(scoring),
			engine,
			metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
			usecase.SyncConfig{Symbols: cfg.Binance.Symbols, Lookback: cfg.Lookback()},
			log,
		)
		syncService.AddListener(hub)
		syncer = syncService

		sched, err = scheduler.NewScheduler(ctx, syncService, cfg.Sync.Timezone, log)
		if err != nil {
			log.Fatal("Failed to init scheduler", zap.Error(err))
		}
		if err := sched.Register(cfg.Sync.Cron); err != nil {
			log.Fatal("Failed to register sync task", zap.Error(err))
		}
		sched.Start()
		if cfg.Sync.RunOnStart {
			go sched.RunNow()
		}
	} else {
		log.Warn("Binance API keys not configured, sync disabled")
	}

	// 6. Init Web Server
	server := web.NewServer(cfg.Server.Port, planner, syncer, store, hub, log)
	if sched != nil {
		server.SetNextSync(sched.Next)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 7. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	cancel()
	if sched != nil {
		sched.Stop()
	}
}
