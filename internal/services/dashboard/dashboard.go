package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/models"
	"trafficsense/internal/services/classifier"
	"trafficsense/internal/services/storage"
)

// PullPath is the collector endpoint returning the latest count.
const PullPath = "/current_count"

// Broadcaster pushes an encoded snapshot to live viewers.
type Broadcaster interface {
	Broadcast(message []byte)
}

type Options struct {
	CollectorURL  string
	CountLogPath  string
	HistoryWindow int
	Timeout       time.Duration
}

// Reader refreshes the dashboard snapshot from the collector and the count log.
// It shares nothing with the pipeline except the log file, which it only reads.
type Reader struct {
	pullURL       string
	countLogPath  string
	historyWindow int
	client        *http.Client
	classifier    *classifier.Classifier
	broadcaster   Broadcaster
	metrics       *metrics.Collector
	logger        *logger.Logger
	now           func() time.Time

	mu   sync.RWMutex
	last models.Snapshot
}

// NewReader creates a Reader. broadcaster may be nil.
func NewReader(opts Options, classifier *classifier.Classifier, broadcaster Broadcaster, metrics *metrics.Collector, logger *logger.Logger) *Reader {
	return &Reader{
		pullURL:       strings.TrimRight(opts.CollectorURL, "/") + PullPath,
		countLogPath:  opts.CountLogPath,
		historyWindow: opts.HistoryWindow,
		client:        &http.Client{Timeout: opts.Timeout},
		classifier:    classifier,
		broadcaster:   broadcaster,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
		last: models.Snapshot{
			Status:  classifier.Classify(0),
			History: []models.CountSample{},
		},
	}
}

// Run refreshes immediately and then on every tick until ctx is done.
func (r *Reader) Run(ctx context.Context, interval time.Duration) {
	r.logger.Info("📊 Dashboard refreshing every %s from %s", interval, r.pullURL)
	r.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh builds a new snapshot. A failed pull shows count 0 with the error; a failed
// history read shows an empty chart. Neither is returned to the caller.
func (r *Reader) Refresh(ctx context.Context) models.Snapshot {
	snapshot := models.Snapshot{UpdatedAt: r.now()}
	outcome := "ok"

	count, err := r.pull(ctx)
	if err != nil {
		r.logger.Warning("⚠️  Failed to pull current count: %v", err)
		snapshot.Error = err.Error()
		outcome = "pull_error"
		count = 0
	}
	snapshot.Count = count
	snapshot.Status = r.classifier.Classify(count)

	// Brak pliku = jeszcze brak danych, nie błąd
	history, err := storage.ReadTail(r.countLogPath, r.historyWindow)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("No count log yet at %s", r.countLogPath)
		history = []models.CountSample{}
	} else if err != nil {
		r.logger.Warning("⚠️  Failed to read count history: %v", err)
		history = []models.CountSample{}
		if outcome == "ok" {
			outcome = "history_error"
		}
	}
	snapshot.History = history

	r.mu.Lock()
	r.last = snapshot
	r.mu.Unlock()
	r.metrics.Refreshes.WithLabelValues(outcome).Inc()

	if r.broadcaster != nil {
		if msg, err := json.Marshal(snapshot); err == nil {
			r.broadcaster.Broadcast(msg)
		} else {
			r.logger.Error("Failed to encode snapshot: %v", err)
		}
	}
	return snapshot
}

// Last returns the most recent snapshot.
func (r *Reader) Last() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Reader) pull(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.pullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("collector unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("collector responded with status %d", resp.StatusCode)
	}

	var payload models.CountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("malformed collector response: %w", err)
	}
	if payload.Count < 0 {
		return 0, fmt.Errorf("malformed collector response: negative count %d", payload.Count)
	}
	return payload.Count, nil
}
