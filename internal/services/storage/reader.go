package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"trafficsense/internal/models"
)

// ParseRow converts a CSV row into a sample.
func ParseRow(row []string) (models.CountSample, error) {
	if len(row) < 2 {
		return models.CountSample{}, fmt.Errorf("expected 2 columns, got %d", len(row))
	}
	ts, err := time.ParseInLocation(models.TimestampLayout, strings.TrimSpace(row[0]), time.Local)
	if err != nil {
		return models.CountSample{}, fmt.Errorf("invalid timestamp %q: %w", row[0], err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil || count < 0 {
		return models.CountSample{}, fmt.Errorf("invalid vehicle count %q", row[1])
	}
	return models.CountSample{Timestamp: ts, Count: count}, nil
}

// scan streams every well-formed data row of the log at path to fn and returns how many rows were skipped.
func scan(path string, fn func(models.CountSample)) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	skipped := 0
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return skipped, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), Header[0]) {
				continue
			}
		}
		sample, err := ParseRow(row)
		if err != nil {
			skipped++
			continue
		}
		fn(sample)
	}
	return skipped, nil
}

// ReadTail returns the last n samples of the log, oldest first.
// The window grows with the rows actually read, so a large n costs no more than the file.
func ReadTail(path string, n int) ([]models.CountSample, error) {
	if n <= 0 {
		return []models.CountSample{}, nil
	}
	ring := []models.CountSample{}
	start := 0
	_, err := scan(path, func(s models.CountSample) {
		if len(ring) < n {
			ring = append(ring, s)
			return
		}
		ring[start] = s
		start = (start + 1) % n
	})
	if err != nil {
		return nil, err
	}
	if start == 0 {
		return ring, nil
	}
	out := make([]models.CountSample, 0, len(ring))
	out = append(out, ring[start:]...)
	return append(out, ring[:start]...), nil
}

// ReadAll returns every well-formed sample of the log and the number of rows it skipped.
func ReadAll(path string) ([]models.CountSample, int, error) {
	var samples []models.CountSample
	skipped, err := scan(path, func(s models.CountSample) {
		samples = append(samples, s)
	})
	return samples, skipped, err
}
