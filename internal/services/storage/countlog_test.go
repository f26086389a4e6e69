package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/models"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, logger.LevelError)
}

func setupLog(t *testing.T) (*CountLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicle_counts_log.csv")
	l, err := OpenCountLog(path, testLogger())
	if err != nil {
		t.Fatalf("OpenCountLog failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func at(sec int) time.Time {
	return time.Date(2025, 6, 15, 14, 30, sec, 0, time.Local)
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestOpenCountLog_CreatesHeaderOnce(t *testing.T) {
	l, path := setupLog(t)

	if got := lines(t, path); len(got) != 1 || got[0] != "timestamp,vehicle_count" {
		t.Fatalf("Expected header only, got %q", got)
	}

	if err := l.Append(models.CountSample{Timestamp: at(0), Count: 2}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	l.Close()

	reopened, err := OpenCountLog(path, testLogger())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Append(models.CountSample{Timestamp: at(1), Count: 3}); err != nil {
		t.Fatalf("Append after reopen failed: %v", err)
	}

	got := lines(t, path)
	headers := 0
	for _, line := range got {
		if line == "timestamp,vehicle_count" {
			headers++
		}
	}
	if headers != 1 {
		t.Errorf("Expected exactly one header, got %d in %q", headers, got)
	}
	if len(got) != 3 {
		t.Errorf("Expected header + 2 rows, got %q", got)
	}
}

func TestAppend_WritesRow(t *testing.T) {
	l, path := setupLog(t)

	ts := at(7)
	if err := l.Append(models.CountSample{Timestamp: ts, Count: 2}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got := lines(t, path)
	expected := ts.Format(models.TimestampLayout) + ",2"
	if got[len(got)-1] != expected {
		t.Errorf("Expected row %q, got %q", expected, got[len(got)-1])
	}
}

func TestAppend_IsAppendOnly(t *testing.T) {
	l, path := setupLog(t)

	for i := 0; i < 5; i++ {
		if err := l.Append(models.CountSample{Timestamp: at(i), Count: i}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	beforeRows := len(lines(t, path)) - 1

	if err := l.Append(models.CountSample{Timestamp: at(10), Count: 9}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(after, before) {
		t.Error("Existing content was rewritten")
	}
	if afterRows := len(lines(t, path)) - 1; afterRows != beforeRows+1 {
		t.Errorf("Expected %d rows, got %d", beforeRows+1, afterRows)
	}
}

func TestAppend_KeepsTimestampsNonDecreasing(t *testing.T) {
	l, path := setupLog(t)

	l.Append(models.CountSample{Timestamp: at(30), Count: 1})
	l.Append(models.CountSample{Timestamp: at(10), Count: 2})

	samples, _, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[1].Timestamp.Before(samples[0].Timestamp) {
		t.Errorf("Rows out of order: %v then %v", samples[0].Timestamp, samples[1].Timestamp)
	}
	if samples[1].Count != 2 {
		t.Errorf("Count must be kept, got %d", samples[1].Count)
	}
}

func TestAppend_ResumesOrderingAfterReopen(t *testing.T) {
	l, path := setupLog(t)
	l.Append(models.CountSample{Timestamp: at(40), Count: 1})
	l.Close()

	reopened, err := OpenCountLog(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	reopened.Append(models.CountSample{Timestamp: at(5), Count: 2})

	samples, _, _ := ReadAll(path)
	if !samples[1].Timestamp.Equal(samples[0].Timestamp) {
		t.Errorf("Expected clamped timestamp %v, got %v", samples[0].Timestamp, samples[1].Timestamp)
	}
}

func TestAppend_FailsOnClosedFile(t *testing.T) {
	l, _ := setupLog(t)
	l.file.Close()

	err := l.Append(models.CountSample{Timestamp: at(0), Count: 1})
	if !errors.Is(err, ErrLogWrite) {
		t.Errorf("Expected ErrLogWrite, got %v", err)
	}
}

func TestOpenCountLog_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenCountLog(filepath.Join(blocker, "log.csv"), testLogger())
	if !errors.Is(err, ErrLogWrite) {
		t.Errorf("Expected ErrLogWrite, got %v", err)
	}
}
