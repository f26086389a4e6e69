package repository

import "trafficsense/internal/models"

// SampleRepository defines the interface for the collector's sample history.
type SampleRepository interface {
	// Create operations
	Insert(sample models.CountSample, requestID string) (int64, error)
	InsertBatch(samples []models.CountSample) error

	// Read operations
	GetRecent(limit int) ([]models.CountSample, error)
	GetStats() (*models.SampleStats, error)

	// Delete operations
	DeleteAll() error
}
