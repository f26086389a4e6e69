package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTail_LastN(t *testing.T) {
	path := writeFile(t, "timestamp,vehicle_count\n"+
		"2025-06-15 14:30:00,1\n"+
		"2025-06-15 14:30:01,2\n"+
		"2025-06-15 14:30:02,3\n"+
		"2025-06-15 14:30:03,4\n"+
		"2025-06-15 14:30:04,5\n")

	tests := []struct {
		n        int
		expected []int
	}{
		{3, []int{3, 4, 5}},
		{5, []int{1, 2, 3, 4, 5}},
		{30, []int{1, 2, 3, 4, 5}},
		{1, []int{5}},
		{0, []int{}},
	}

	for _, tt := range tests {
		samples, err := ReadTail(path, tt.n)
		if err != nil {
			t.Fatalf("ReadTail(%d) failed: %v", tt.n, err)
		}
		if len(samples) != len(tt.expected) {
			t.Fatalf("ReadTail(%d) returned %d samples, expected %d", tt.n, len(samples), len(tt.expected))
		}
		for i, s := range samples {
			if s.Count != tt.expected[i] {
				t.Errorf("ReadTail(%d)[%d] = %d, expected %d", tt.n, i, s.Count, tt.expected[i])
			}
		}
	}
}

func TestReadTail_HugeWindowOnSmallLog(t *testing.T) {
	path := writeFile(t, "timestamp,vehicle_count\n2025-06-15 14:30:00,7\n")

	samples, err := ReadTail(path, 1<<40)
	if err != nil {
		t.Fatalf("ReadTail failed: %v", err)
	}
	if len(samples) != 1 || samples[0].Count != 7 {
		t.Errorf("Expected the single row, got %+v", samples)
	}
	if cap(samples) > 16 {
		t.Errorf("Window should grow with the rows read, got capacity %d", cap(samples))
	}
}

func TestReadTail_EmptyLogIsNotNil(t *testing.T) {
	samples, err := ReadTail(writeFile(t, "timestamp,vehicle_count\n"), 30)
	if err != nil {
		t.Fatalf("ReadTail failed: %v", err)
	}
	if samples == nil || len(samples) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", samples)
	}
}

func TestReadTail_MissingFile(t *testing.T) {
	_, err := ReadTail(filepath.Join(t.TempDir(), "missing.csv"), 30)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestReadAll_SkipsMalformedRows(t *testing.T) {
	path := writeFile(t, "timestamp,vehicle_count\n"+
		"2025-06-15 14:30:00,1\n"+
		"yesterday,2\n"+
		"2025-06-15 14:30:02,-4\n"+
		"2025-06-15 14:30:03\n"+
		"2025-06-15 14:30:04,5\n")

	samples, skipped, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(samples))
	}
	if skipped != 3 {
		t.Errorf("Expected 3 skipped rows, got %d", skipped)
	}
}

func TestReadAll_HeaderlessFile(t *testing.T) {
	path := writeFile(t, "2025-06-15 14:30:00,8\n")

	samples, _, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 || samples[0].Count != 8 {
		t.Errorf("Unexpected samples %+v", samples)
	}
}

func TestParseRow(t *testing.T) {
	s, err := ParseRow([]string{"2025-06-15 14:30:00", " 12 "})
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}
	if s.Count != 12 || s.Timestamp.Hour() != 14 {
		t.Errorf("Unexpected sample %+v", s)
	}
}
