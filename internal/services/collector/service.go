package collector

import (
	"errors"
	"fmt"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/models"
	"trafficsense/internal/repository"
)

var (
	// ErrInvalidCount rejects pushes that are not a non-negative integer.
	ErrInvalidCount = errors.New("count must be a non-negative integer")
	// ErrNoHistory is returned when the collector runs without a sample store.
	ErrNoHistory = errors.New("sample history not available")
)

// Service holds the latest reported count and records pushes to the sample history.
type Service struct {
	register Register
	samples  repository.SampleRepository
	metrics  *metrics.Collector
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a collector. samples may be nil, in which case history is not kept.
func NewService(samples repository.SampleRepository, metrics *metrics.Collector, logger *logger.Logger) *Service {
	return &Service{
		samples: samples,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Push replaces the latest count. History failures are logged, the push still succeeds.
func (s *Service) Push(count int, requestID string) error {
	if count < 0 {
		s.metrics.InvalidPushes.Inc()
		return fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	sample := models.CountSample{Timestamp: s.now(), Count: count}
	s.register.Store(sample)
	s.metrics.Pushes.Inc()
	s.metrics.CurrentCount.Set(float64(count))

	if s.samples != nil {
		if _, err := s.samples.Insert(sample, requestID); err != nil {
			s.logger.Error("Failed to record sample %d (request %s): %v", count, requestID, err)
		}
	}

	s.logger.Debug("Received vehicle count %d (request %s)", count, requestID)
	return nil
}

// Latest returns the latest sample and whether any push was received.
// Before the first push the sample is zero, so its count reads as 0.
func (s *Service) Latest() (models.CountSample, bool) {
	s.metrics.Pulls.Inc()
	return s.register.Load()
}

// Stats summarizes the sample history.
func (s *Service) Stats() (*models.SampleStats, error) {
	if s.samples == nil {
		return nil, ErrNoHistory
	}
	return s.samples.GetStats()
}

// Recent returns up to limit of the newest recorded samples, oldest first.
func (s *Service) Recent(limit int) ([]models.CountSample, error) {
	if s.samples == nil {
		return nil, ErrNoHistory
	}
	return s.samples.GetRecent(limit)
}

// RejectPush records a push that could not be decoded.
func (s *Service) RejectPush() {
	s.metrics.InvalidPushes.Inc()
}
