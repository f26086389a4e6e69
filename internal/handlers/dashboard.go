package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
	"trafficsense/internal/models"
	"trafficsense/internal/services/dashboard"
	"trafficsense/internal/services/storage"
)

// MaxLimit bounds every ?limit= query parameter.
const MaxLimit = 1000

// DashboardHandler returns the last refreshed snapshot.
func DashboardHandler(reader *dashboard.Reader, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		writeJSON(w, http.StatusOK, reader.Last(), logger)
	}
}

// HistoryHandler returns the last ?limit= rows of the count log, oldest first, at most MaxLimit.
// A missing log yields an empty list.
func HistoryHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := limitParam(r, cfg.HistoryWindow)

		history, err := storage.ReadTail(cfg.CountLogPath, limit)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warning("⚠️  Failed to read count log: %v", err)
			}
			history = []models.CountSample{}
		}
		writeJSON(w, http.StatusOK, history, logger)
	}
}

// DownloadLogHandler serves the whole count log as a CSV attachment.
func DownloadLogHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := filepath.Base(cfg.CountLogPath)
		if _, err := os.Stat(cfg.CountLogPath); err != nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + filename))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, cfg.CountLogPath)
	}
}

// limitParam reads ?limit=, falling back to def and capping at MaxLimit.
func limitParam(r *http.Request, def int) int {
	return min(atoiDefault(r.URL.Query().Get("limit"), def), MaxLimit)
}

// atoiDefault converts s to a positive int or returns def.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
