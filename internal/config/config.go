package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	VideoPath          string
	ModelPath          string
	ConfigPath         string
	DetectionThreshold float64
	ProcessingInterval int           // Co którą klatkę przetwarzać (1=każdą, 5=co piątą)
	EmitInterval       time.Duration // Minimalny odstęp między wysyłkami licznika
	CollectorURL       string
	ReportTimeout      time.Duration
	CountLogPath       string
	ShowWindow         bool

	Port            int
	RefreshInterval time.Duration
	HistoryWindow   int
	DatabasePath    string
	BusyThreshold   int
	JamThreshold    int

	LogDirectory string
	LogLevel     string
	MetricsAddr  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		VideoPath:          getEnv("VIDEO_PATH", filepath.Join("dataset", "videoplayback.mp4")),
		ModelPath:          getEnv("MODEL_PATH", filepath.Join("models", "frozen_inference_graph.pb")),
		ConfigPath:         getEnv("MODEL_CONFIG_PATH", filepath.Join("models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		DetectionThreshold: getEnvAsFloat("DETECTION_THRESHOLD", 0.5),
		ProcessingInterval: getEnvAsInt("PROCESSING_INTERVAL", 5),
		EmitInterval:       getEnvAsDuration("EMIT_INTERVAL", time.Second),
		CollectorURL:       getEnv("COLLECTOR_URL", "http://localhost:5000"),
		ReportTimeout:      getEnvAsDuration("REPORT_TIMEOUT", 2*time.Second),
		CountLogPath:       getEnv("COUNT_LOG_PATH", "vehicle_counts_log.csv"),
		ShowWindow:         getEnvAsBool("SHOW_WINDOW", false),

		Port:            getEnvAsInt("PORT", 5000),
		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 5*time.Second),
		HistoryWindow:   getEnvAsInt("HISTORY_WINDOW", 30),
		DatabasePath:    getEnv("DATABASE_PATH", filepath.Join("data", "samples.db")),
		BusyThreshold:   getEnvAsInt("BUSY_THRESHOLD", 5),
		JamThreshold:    getEnvAsInt("JAM_THRESHOLD", 12),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MetricsAddr:  getEnv("METRICS_ADDR", ""),
	}
}

// Validate rejects settings the pipeline and dashboard cannot run with.
func (c *Config) Validate() error {
	if c.ProcessingInterval < 1 {
		return fmt.Errorf("PROCESSING_INTERVAL must be >= 1, got %d", c.ProcessingInterval)
	}
	if c.EmitInterval < 0 {
		return fmt.Errorf("EMIT_INTERVAL must not be negative, got %s", c.EmitInterval)
	}
	if c.ReportTimeout <= 0 {
		return fmt.Errorf("REPORT_TIMEOUT must be positive, got %s", c.ReportTimeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("HISTORY_WINDOW must be >= 1, got %d", c.HistoryWindow)
	}
	if c.BusyThreshold < 0 || c.BusyThreshold >= c.JamThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= BUSY_THRESHOLD < JAM_THRESHOLD, got %d and %d", c.BusyThreshold, c.JamThreshold)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("1500ms", "2s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}
