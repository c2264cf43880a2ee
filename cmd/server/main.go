package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/api"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/config"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/database"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/logger"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/repository"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/scheduler"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/secret"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logr := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db, logr); err != nil {
		logr.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logr.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	box, err := secret.NewBox(cfg.Security.FernetKeys...)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to load encryption keys")
	}
	if box == nil {
		logr.Warn().Msg("FERNET_KEYS not set, cash flow notes are stored in plain text")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("portfolio_analytics", registry)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	cashFlowRepo := repository.NewCashFlowRepository(db, box)

	// Create services
	prices := service.NewCachingPriceProvider(priceRepo)
	valuationService := service.NewValuationService(prices, rateRepo, service.NewLoggingObserver(logr, m), logr)
	snapshotService := service.NewSnapshotService(valuationService, valuationRepo, m, logr)
	cashFlowService := service.NewCashFlowService(cashFlowRepo, logr)
	performanceService := service.NewPerformanceService(valuationService, cashFlowService, logr)
	attributionService := service.NewAttributionService(valuationService, logr)

	sched := scheduler.New(logr)
	if cfg.Scheduler.Enabled {
		job := scheduler.NewSnapshotJob(portfolioRepo, snapshotService, scheduler.SnapshotJobConfig{
			Currency:    cfg.Analytics.ReportingCurrency,
			Period:      cfg.Scheduler.SnapshotPeriod,
			Concurrency: cfg.Scheduler.Concurrency,
		}, m, logr)
		cacheReset := scheduler.JobFunc("price_cache_reset", func(context.Context) error {
			prices.Reset()
			return nil
		})
		perfJob := scheduler.NewPerformanceJob(
			portfolioRepo,
			valuationService,
			performanceService,
			attributionService,
			cfg.Analytics.ReportingCurrency,
			cfg.Scheduler.PerformanceDays,
			m,
			logr,
		)
		if err := sched.AddJob(cfg.Scheduler.SnapshotSchedule, scheduler.Chain(cacheReset, job, perfJob)); err != nil {
			logr.Fatal().Err(err).Str("schedule", cfg.Scheduler.SnapshotSchedule).Msg("Failed to register snapshot job")
		}
	}
	sched.Start()

	var server *http.Server
	if cfg.Server.Enabled {
		systemService := service.NewSystemService(db, map[string]bool{
			"note_encryption":    box != nil,
			"snapshot_scheduler": cfg.Scheduler.Enabled,
		})
		server = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.NewRouter(systemService, registry, cfg, logr),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logr.Info().Str("addr", cfg.Server.Addr).Msg("Server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logr.Fatal().Err(err).Msg("Server failed to start")
			}
		}()
	}

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info().Msg("Shutting down...")
	sched.Stop()

	if server != nil {
		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logr.Error().Err(err).Msg("Server forced to shutdown")
		}
	}

	logr.Info().Msg("Exited")
}
