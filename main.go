package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"vidpress/internal/auth"
	"vidpress/internal/cache"
	"vidpress/internal/database"
	"vidpress/internal/engine"
	"vidpress/internal/filesystem"
	"vidpress/internal/handlers"
	"vidpress/internal/jobs"
	"vidpress/internal/logging"
	"vidpress/internal/media"
	"vidpress/internal/metrics"
	"vidpress/internal/middleware"
	"vidpress/internal/preset"
	"vidpress/internal/progress"
	"vidpress/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize metrics registry before anything records to it
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())

	// Label filesystem metrics by volume
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"cache":    config.CacheDir,
		"database": config.DatabaseDir,
	}))

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize result cache
	resultCache, err := cache.New(context.Background(), config.ResultsDir, db)
	if err != nil {
		startup.LogFatal("Failed to initialize result cache: %v", err)
	}

	// Initialize encoder
	startup.LogEngineInit(config)
	runner := engine.NewFFmpegRunner(config.FFmpegPath)
	prober := engine.NewProber(config.FFprobePath)

	manager := jobs.NewManager(runner, prober, preset.NewResolver(), resultCache, db, jobs.Config{
		MaxConcurrent: config.MaxJobs,
		Progress: progress.Config{
			MinDelta:    config.ProgressDelta,
			MinInterval: config.ProgressEvery,
		},
		DisableCache: config.CacheDisabled,
		HistoryLimit: config.HistoryLimit,
	})

	// Initialize thumbnails
	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, falling back to pure-Go resizing: %v", err)
	}
	thumbnails := media.NewGenerator(config.ThumbnailDir, config.FFmpegPath, config.ThumbnailsEnabled)

	// Admin token protects mutating endpoints when configured
	verifier := auth.NewVerifier(db)

	// Initialize handlers and router
	h := handlers.New(manager, prober, thumbnails, db, config)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Middleware chain: auth innermost, logging outermost
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.Auth(verifier)(handler)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Logger(loggingConfig)(handler)

	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Downloads and event streams run long; the timeout writer
		// enforces per-write deadlines instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics server on its own port
	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(resultCache, config.DatabasePath, 30*time.Second)
		collector.Start()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, manager, runner, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, manager *jobs.Manager, runner *engine.FFmpegRunner, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Draining job manager")
	manager.Close()
	startup.LogShutdownStepComplete("Job manager drained")

	startup.LogShutdownStep("Cleaning up encoder processes")
	runner.Cleanup()
	startup.LogShutdownStepComplete("Encoder cleanup complete")

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}
	if collector != nil {
		collector.Stop()
	}

	media.ShutdownVips()
	startup.LogShutdownComplete()
}
