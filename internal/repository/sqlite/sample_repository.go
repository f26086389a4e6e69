package sqlite

import (
	"database/sql"
	"fmt"
	"slices"
	"time"

	"trafficsense/internal/models"
)

// SampleRepository implements repository.SampleRepository for SQLite.
type SampleRepository struct {
	db *DB
}

// NewSampleRepository creates a new SQLite sample repository.
func NewSampleRepository(db *DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Insert adds one pushed sample.
func (r *SampleRepository) Insert(sample models.CountSample, requestID string) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO samples (timestamp, vehicle_count, request_id)
		VALUES (?, ?, ?)
	`, sample.Timestamp.UTC(), sample.Count, requestID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sample: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple samples in a single transaction.
func (r *SampleRepository) InsertBatch(samples []models.CountSample) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (timestamp, vehicle_count)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(s.Timestamp.UTC(), s.Count); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecent returns up to limit of the newest samples, oldest first.
func (r *SampleRepository) GetRecent(limit int) ([]models.CountSample, error) {
	if limit <= 0 {
		return []models.CountSample{}, nil
	}

	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT timestamp, vehicle_count FROM samples
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples := make([]models.CountSample, 0, limit)
	for rows.Next() {
		var s models.CountSample
		if err := rows.Scan(&s.Timestamp, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first from the query, callers chart oldest first.
	slices.Reverse(samples)
	return samples, nil
}

// GetStats returns statistics about stored samples.
func (r *SampleRepository) GetStats() (*models.SampleStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.SampleStats{}

	var (
		minCount sql.NullInt64
		maxCount sql.NullInt64
		avg      sql.NullFloat64
	)
	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*), MIN(vehicle_count), MAX(vehicle_count), AVG(vehicle_count)
		FROM samples
	`).Scan(&stats.Total, &minCount, &maxCount, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate samples: %w", err)
	}
	if stats.Total == 0 {
		return stats, nil
	}
	stats.Min = int(minCount.Int64)
	stats.Max = int(maxCount.Int64)
	stats.Average = avg.Float64

	var last time.Time
	err = r.db.Conn().QueryRow(`SELECT timestamp FROM samples ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sample: %w", err)
	}
	stats.LastAt = last

	return stats, nil
}

// DeleteAll removes every sample.
func (r *SampleRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM samples`); err != nil {
		return fmt.Errorf("failed to delete samples: %w", err)
	}
	return nil
}
