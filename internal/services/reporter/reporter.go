package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"trafficsense/internal/models"

	"github.com/google/uuid"
)

// PushPath is the collector endpoint receiving counts.
const PushPath = "/vehicle_count"

// RequestIDHeader carries a per-push id the collector logs next to the count.
const RequestIDHeader = "X-Request-ID"

// Result is the outcome of one push. It is meant for diagnostics only.
type Result struct {
	OK         bool
	StatusCode int
	RequestID  string
	Err        error
}

// Reporter pushes counts to the collector. It never retries; each push is independent.
type Reporter struct {
	endpoint string
	client   *http.Client
}

// NewReporter creates a Reporter for the collector at baseURL. timeout bounds every push.
func NewReporter(baseURL string, timeout time.Duration) *Reporter {
	return &Reporter{
		endpoint: strings.TrimRight(baseURL, "/") + PushPath,
		client:   &http.Client{Timeout: timeout},
	}
}

// Report sends {"count": n} to the collector. Any 2xx response is a success.
func (r *Reporter) Report(ctx context.Context, sample models.CountSample) Result {
	requestID := uuid.NewString()
	result := Result{RequestID: requestID}

	body, err := json.Marshal(models.CountPayload{Count: sample.Count})
	if err != nil {
		result.Err = fmt.Errorf("failed to encode count: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("failed to build request: %w", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := r.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("failed to send count: %w", err)
		return result
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("collector responded with status %d", resp.StatusCode)
		return result
	}

	result.OK = true
	return result
}

// Endpoint returns the full push URL.
func (r *Reporter) Endpoint() string {
	return r.endpoint
}
