package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/services"
	"trafficsense/internal/services/ai"
	"trafficsense/internal/services/reporter"
	"trafficsense/internal/services/sampling"
	"trafficsense/internal/services/storage"
	"trafficsense/internal/services/video"

	"github.com/google/uuid"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer appLogger.Close()

	runID := uuid.NewString()
	appLogger.Info("🚦 Vehicle counter starting (run %s)", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector, err := ai.NewDetectorService(cfg, appLogger)
	if err != nil {
		appLogger.Error("Startup failed: %v", err)
		return 1
	}
	defer detector.Close()

	source, err := video.Open(cfg.VideoPath)
	if err != nil {
		appLogger.Error("Startup failed: %v", err)
		return 1
	}
	defer source.Close()
	appLogger.Info("📹 Video source %s (%.1f fps)", cfg.VideoPath, source.FPS())

	countLog, err := storage.OpenCountLog(cfg.CountLogPath, appLogger)
	if err != nil {
		appLogger.Error("Startup failed: %v", err)
		return 1
	}
	defer countLog.Close()

	m := metrics.NewPipeline()
	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Warning("⚠️  Metrics server stopped: %v", err)
			}
		}()
		defer metricsServer.Close()
		appLogger.Info("📈 Metrics on %s/metrics", cfg.MetricsAddr)
	}

	rep := reporter.NewReporter(cfg.CollectorURL, cfg.ReportTimeout)
	appLogger.Info("📡 Reporting to %s", rep.Endpoint())

	sampler := sampling.NewController(cfg.ProcessingInterval, cfg.EmitInterval, time.Now)
	pipeline := services.NewPipeline(source, detector, sampler, rep, countLog, m, appLogger)

	if cfg.ShowWindow {
		preview := ai.NewPreviewWindow("Vehicle Detection")
		defer preview.Close()
		pipeline.SetPreview(preview)
	}

	if err := pipeline.Run(ctx); err != nil {
		appLogger.Error("Run %s aborted: %v", runID, err)
		return 1
	}
	return 0
}
