package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
	"trafficsense/internal/models"
	"trafficsense/internal/services/collector"
	"trafficsense/internal/services/reporter"

	"github.com/google/uuid"
)

// pushRequest keeps Count a pointer so a missing field can be told apart from 0.
type pushRequest struct {
	Count *int `json:"count"`
}

type pushResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PushCountHandler accepts {"count": n} from the counting pipeline.
func PushCountHandler(svc *collector.Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(reporter.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		var body pushRequest
		r.Body = http.MaxBytesReader(w, r.Body, 1024)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Count == nil {
			logger.Warning("⚠️  Invalid count push (request %s): %v", requestID, err)
			svc.RejectPush()
			writeJSONError(w, http.StatusBadRequest, "Invalid count")
			return
		}

		if err := svc.Push(*body.Count, requestID); err != nil {
			if errors.Is(err, collector.ErrInvalidCount) {
				writeJSONError(w, http.StatusBadRequest, "Invalid count")
				return
			}
			logger.Error("Failed to accept count (request %s): %v", requestID, err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to accept count")
			return
		}

		writeJSON(w, http.StatusOK, pushResponse{Status: "ok", Count: *body.Count}, logger)
	}
}

// currentCountResponse is {"count": n}, plus the time of the push once there was one.
type currentCountResponse struct {
	Count  int        `json:"count"`
	LastAt *time.Time `json:"last_at,omitempty"`
}

// CurrentCountHandler returns the latest count, 0 before the first push.
func CurrentCountHandler(svc *collector.Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sample, ok := svc.Latest()
		resp := currentCountResponse{Count: sample.Count}
		if ok {
			resp.LastAt = &sample.Timestamp
		}
		writeJSON(w, http.StatusOK, resp, logger)
	}
}

// SamplesHandler returns the newest ?limit= recorded pushes, oldest first, at most MaxLimit.
func SamplesHandler(svc *collector.Service, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		samples, err := svc.Recent(limitParam(r, cfg.HistoryWindow))
		if errors.Is(err, collector.ErrNoHistory) {
			writeJSONError(w, http.StatusServiceUnavailable, "History not available")
			return
		}
		if err != nil {
			logger.Error("Failed to get samples: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to get samples")
			return
		}
		if samples == nil {
			samples = []models.CountSample{}
		}
		writeJSON(w, http.StatusOK, samples, logger)
	}
}

// StatsHandler returns statistics of the recorded push history.
func StatsHandler(svc *collector.Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats()
		if errors.Is(err, collector.ErrNoHistory) {
			writeJSONError(w, http.StatusServiceUnavailable, "History not available")
			return
		}
		if err != nil {
			logger.Error("Failed to get stats: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to get stats")
			return
		}
		writeJSON(w, http.StatusOK, stats, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
