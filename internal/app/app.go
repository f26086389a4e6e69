package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/repository/sqlite"
	"trafficsense/internal/routes"
	"trafficsense/internal/services/classifier"
	"trafficsense/internal/services/collector"
	"trafficsense/internal/services/dashboard"
	"trafficsense/internal/services/websocket"
)

// App is the collector and dashboard server.
type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	collector  *collector.Service
	dashboard  *dashboard.Reader
	hubService *websocket.HubService
	metrics    *metrics.Collector
}

func NewApp(cfg *config.Config, logger *logger.Logger) (*App, error) {
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample database: %w", err)
	}

	trafficClassifier, err := classifier.New(cfg.BusyThreshold, cfg.JamThreshold)
	if err != nil {
		db.Close()
		return nil, err
	}

	m := metrics.NewCollector()
	hub := websocket.NewHubService(m, logger)
	reader := dashboard.NewReader(dashboard.Options{
		CollectorURL:  cfg.CollectorURL,
		CountLogPath:  cfg.CountLogPath,
		HistoryWindow: cfg.HistoryWindow,
		Timeout:       cfg.ReportTimeout,
	}, trafficClassifier, hub, m, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		collector:  collector.NewService(sqlite.NewSampleRepository(db), m, logger),
		dashboard:  reader,
		hubService: hub,
		metrics:    m,
	}, nil
}

// Run serves HTTP until ctx is done, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	// Start background services
	go a.hubService.Run(ctx)
	go a.dashboard.Run(ctx, a.config.RefreshInterval)

	router := routes.SetupRoutes(routes.Deps{
		Collector: a.collector,
		Dashboard: a.dashboard,
		Hub:       a.hubService,
		Metrics:   a.metrics,
	}, a.config, a.logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("🚀 Traffic Server")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("📄 Count log: %s", a.config.CountLogPath)
	a.logger.Info("🗄️  Samples: %s", a.config.DatabasePath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
