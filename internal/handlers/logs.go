package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"trafficsense/internal/logger"

	"github.com/gorilla/mux"
)

// ShowLogsHandler serves {level}.log from the log directory as text/plain.
func ShowLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logFileFor(w, r)
		if !ok {
			return
		}
		serveLogFile(w, r, logger.LogDirectory(), filename)
	}
}

// ClearLogsHandler truncates {level}.log.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logFileFor(w, r)
		if !ok {
			return
		}
		if err := logger.CleanLogs(filename); err != nil {
			http.Error(w, "Failed to clear "+filename, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func logFileFor(w http.ResponseWriter, r *http.Request) (string, bool) {
	level := mux.Vars(r)["level"]
	filename, ok := logger.LogFiles[level]
	if !ok {
		http.Error(w, "Unknown log level: "+level, http.StatusNotFound)
	}
	return filename, ok
}

func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	// Sprawdź czy plik istnieje
	if _, err := os.Stat(filePath); logDir == "" || os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filePath)
}
