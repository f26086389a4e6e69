package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trafficsense/internal/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "samples_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	db, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create database: %v", err)
	}

	return db, func() {
		db.Close()
		os.RemoveAll(tempDir)
	}
}

func sampleAt(sec, count int) models.CountSample {
	return models.CountSample{
		Timestamp: time.Date(2025, 6, 15, 14, 30, sec, 0, time.UTC),
		Count:     count,
	}
}

func TestSampleRepository_Insert(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)

	id, err := repo.Insert(sampleAt(0, 4), "req-1")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("Expected positive id, got %d", id)
	}
}

func TestSampleRepository_RejectsNegativeCount(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)
	if _, err := repo.Insert(sampleAt(0, -1), ""); err == nil {
		t.Error("Expected constraint violation for negative count")
	}
}

func TestSampleRepository_GetRecent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)
	for i := 0; i < 10; i++ {
		if _, err := repo.Insert(sampleAt(i, i), ""); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	samples, err := repo.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	for i, expected := range []int{7, 8, 9} {
		if samples[i].Count != expected {
			t.Errorf("samples[%d] = %d, expected %d", i, samples[i].Count, expected)
		}
	}
}

func TestSampleRepository_InsertBatchAndStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)

	empty, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats on empty table failed: %v", err)
	}
	if empty.Total != 0 {
		t.Errorf("Expected 0 samples, got %d", empty.Total)
	}

	batch := []models.CountSample{sampleAt(0, 2), sampleAt(1, 8), sampleAt(2, 5)}
	if err := repo.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Min != 2 || stats.Max != 8 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.Average != 5 {
		t.Errorf("Expected average 5, got %v", stats.Average)
	}
	if !stats.LastAt.Equal(sampleAt(2, 0).Timestamp) {
		t.Errorf("Expected last_at %v, got %v", sampleAt(2, 0).Timestamp, stats.LastAt)
	}
}

func TestSampleRepository_DeleteAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)
	repo.Insert(sampleAt(0, 1), "")
	repo.Insert(sampleAt(1, 2), "")

	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	stats, _ := repo.GetStats()
	if stats.Total != 0 {
		t.Errorf("Expected empty table, got %d", stats.Total)
	}
}

func TestDatabase_ConcurrentAccess(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSampleRepository(db)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			if _, err := repo.Insert(sampleAt(idx, idx), ""); err != nil {
				t.Errorf("Concurrent insert %d failed: %v", idx, err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 10 {
		t.Errorf("Expected 10 samples, got %d", stats.Total)
	}
}
