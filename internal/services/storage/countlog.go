package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/models"
)

// Header is the first row of every count log.
var Header = []string{"timestamp", "vehicle_count"}

// ErrLogWrite means a sample could not be made durable. The run must stop.
var ErrLogWrite = errors.New("count log write failed")

// CountLog is the append-only CSV log of emitted samples. Rows are never rewritten.
type CountLog struct {
	path   string
	file   *os.File
	writer *csv.Writer
	last   time.Time
	mu     sync.Mutex
	logger *logger.Logger
}

// OpenCountLog opens the log at path, creating it with the header row when it does not exist.
func OpenCountLog(path string, logger *logger.Logger) (*CountLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating directory: %v", ErrLogWrite, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrLogWrite, path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrLogWrite, path, err)
	}

	l := &CountLog{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger,
	}

	if info.Size() == 0 {
		if err := l.writeRow(Header); err != nil {
			file.Close()
			return nil, err
		}
		logger.Info("📄 Created count log: %s", path)
		return l, nil
	}

	if tail, err := ReadTail(path, 1); err == nil && len(tail) == 1 {
		l.last = tail[0].Timestamp
	}
	logger.Info("📄 Logging to existing count log: %s", path)
	return l, nil
}

// Append writes one row and syncs it to disk before returning.
// A timestamp earlier than the previous row is written as the previous row's timestamp.
func (l *CountLog) Append(sample models.CountSample) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := sample.Timestamp.Truncate(time.Second)
	if ts.Before(l.last) {
		l.logger.Warning("Clock went backwards (%s < %s), keeping log order", ts.Format(models.TimestampLayout), l.last.Format(models.TimestampLayout))
		ts = l.last
	}

	row := []string{ts.Format(models.TimestampLayout), strconv.Itoa(sample.Count)}
	if err := l.writeRow(row); err != nil {
		return err
	}
	l.last = ts
	l.logger.Debug("📝 Logged to CSV: %s, %d", row[0], sample.Count)
	return nil
}

func (l *CountLog) writeRow(row []string) error {
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrLogWrite, err)
	}
	return nil
}

// Path returns the log file location.
func (l *CountLog) Path() string {
	return l.path
}

func (l *CountLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
