package ai

import (
	"errors"
	"fmt"
	"image"
	"os"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
	"trafficsense/internal/models"

	"gocv.io/x/gocv"
)

const (
	// DefaultDetectionThreshold is the minimum confidence for object detections.
	DefaultDetectionThreshold = 0.5
	// inputSize is the SSD MobileNet input resolution.
	inputSize = 300
)

// ErrModelLoad means the detection network could not be loaded; the run must not start.
var ErrModelLoad = errors.New("failed to load detection model")

// MatFrame is a frame that exposes its raster as a gocv.Mat.
type MatFrame interface {
	Mat() *gocv.Mat
}

// DetectorService wraps a pretrained SSD network and turns frames into detections.
type DetectorService struct {
	net        gocv.Net
	modelPath  string
	configPath string
	threshold  float32
	logger     *logger.Logger
}

// NewDetectorService loads the network described by cfg. A missing or empty model is fatal.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	threshold := cfg.DetectionThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultDetectionThreshold
	}

	service := &DetectorService{
		modelPath:  cfg.ModelPath,
		configPath: cfg.ConfigPath,
		threshold:  float32(threshold),
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("network %s is empty", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized from %s", s.modelPath)
	return nil
}

// Detect runs the network on one frame and returns every object above the confidence threshold.
func (s *DetectorService) Detect(frame models.Frame) ([]models.Detection, error) {
	mf, ok := frame.(MatFrame)
	if !ok {
		return nil, fmt.Errorf("frame %d does not carry a Mat", frame.Index())
	}
	mat := mf.Mat()
	if mat.Empty() {
		return nil, fmt.Errorf("frame %d is empty", frame.Index())
	}

	blob := gocv.BlobFromImage(*mat, 1.0/127.5, image.Pt(inputSize, inputSize), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	// Each output row: [batch, classID, confidence, left, top, right, bottom], coordinates normalized.
	rows := output.Reshape(1, output.Total()/7)
	defer rows.Close()

	cols := float32(mat.Cols())
	height := float32(mat.Rows())

	detections := make([]models.Detection, 0)
	for i := 0; i < rows.Rows(); i++ {
		confidence := rows.GetFloatAt(i, 2)
		if confidence <= s.threshold {
			continue
		}

		classID := int(rows.GetFloatAt(i, 1))
		x := int(rows.GetFloatAt(i, 3) * cols)
		y := int(rows.GetFloatAt(i, 4) * height)
		w := int(rows.GetFloatAt(i, 5)*cols) - x
		h := int(rows.GetFloatAt(i, 6)*height) - y

		detections = append(detections, models.Detection{
			Label:      ClassLabel(classID),
			Confidence: float64(confidence),
			X:          x,
			Y:          y,
			Width:      w,
			Height:     h,
		})
	}

	s.logger.Debug("Frame %d: %d objects detected", frame.Index(), len(detections))
	return detections, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}
