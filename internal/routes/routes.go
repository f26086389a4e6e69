package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"trafficsense/internal/config"
	"trafficsense/internal/handlers"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/services/collector"
	"trafficsense/internal/services/dashboard"
	"trafficsense/internal/services/websocket"

	"github.com/gorilla/mux"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Collector *collector.Service
	Dashboard *dashboard.Reader
	Hub       *websocket.HubService
	Metrics   *metrics.Collector
}

// StaticDir is the directory the dashboard page is served from.
var StaticDir = "static"

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(StaticDir, filepath.Clean(path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the collector API, the dashboard API and page, log and metrics endpoints.
func SetupRoutes(deps Deps, cfg *config.Config, logger *logger.Logger) http.Handler {
	router := mux.NewRouter()

	// Collector
	router.HandleFunc("/vehicle_count", handlers.PushCountHandler(deps.Collector, logger)).Methods(http.MethodPost)
	router.HandleFunc("/current_count", handlers.CurrentCountHandler(deps.Collector, logger)).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", handlers.StatsHandler(deps.Collector, logger)).Methods(http.MethodGet)
	router.HandleFunc("/api/samples", handlers.SamplesHandler(deps.Collector, cfg, logger)).Methods(http.MethodGet)

	// Dashboard
	router.HandleFunc("/api/dashboard", handlers.DashboardHandler(deps.Dashboard, logger)).Methods(http.MethodGet)
	router.HandleFunc("/api/history", handlers.HistoryHandler(cfg, logger)).Methods(http.MethodGet)
	router.HandleFunc("/api/view", handlers.ViewWebsocketHandler(deps.Hub, deps.Dashboard, logger))
	router.HandleFunc("/download/log", handlers.DownloadLogHandler(cfg)).Methods(http.MethodGet)

	// Log endpoints
	router.HandleFunc("/logs/{level}", handlers.ShowLogsHandler(logger)).Methods(http.MethodGet)
	router.HandleFunc("/logs/{level}/clear", handlers.ClearLogsHandler(logger)).Methods(http.MethodPost)

	router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	// Static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticDir))))

	// Automatic HTML handler mapping for example: /about -> /static/about.html
	router.PathPrefix("/").HandlerFunc(dynamicHTMLHandler).Methods(http.MethodGet)

	return router
}
