package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
	"trafficsense/internal/models"
	"trafficsense/internal/services/counter"
	"trafficsense/internal/services/reporter"
	"trafficsense/internal/services/sampling"
)

// FrameSource yields frames in order until it returns models.ErrEndOfStream.
type FrameSource interface {
	Next() (models.Frame, error)
}

type Detector interface {
	Detect(frame models.Frame) ([]models.Detection, error)
}

type Reporter interface {
	Report(ctx context.Context, sample models.CountSample) reporter.Result
}

type CountLogger interface {
	Append(sample models.CountSample) error
}

// Preview renders a processed frame. Show returns true when the operator asked to quit.
type Preview interface {
	Show(frame models.Frame, detections []models.Detection, count int) (bool, error)
}

// Pipeline is the single-threaded counting loop:
// source -> detector -> reducer -> sampler -> {reporter, count log}.
type Pipeline struct {
	source   FrameSource
	detector Detector
	sampler  *sampling.Controller
	reporter Reporter
	countLog CountLogger
	preview  Preview
	metrics  *metrics.Pipeline
	logger   *logger.Logger

	framesRead      int64
	framesProcessed int64
	samplesEmitted  int64
}

func NewPipeline(source FrameSource, detector Detector, sampler *sampling.Controller, reporter Reporter, countLog CountLogger, metrics *metrics.Pipeline, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		source:   source,
		detector: detector,
		sampler:  sampler,
		reporter: reporter,
		countLog: countLog,
		metrics:  metrics,
		logger:   logger,
	}
}

// SetPreview enables the annotated preview window.
func (p *Pipeline) SetPreview(preview Preview) {
	p.preview = preview
}

// Run processes frames until end of stream, operator quit or ctx cancellation, all of which return nil.
// The only runtime error returned is a count log write failure.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("🎬 Pipeline started - processing every %d frame(s)", p.sampler.ProcessEveryNth())
	defer func() {
		p.logger.Info("🛑 Pipeline stopped - read %d, processed %d, emitted %d", p.framesRead, p.framesProcessed, p.samplesEmitted)
	}()

	for {
		if ctx.Err() != nil {
			p.logger.Info("Interrupted, stopping")
			return nil
		}

		frame, err := p.source.Next()
		if errors.Is(err, models.ErrEndOfStream) {
			p.logger.Info("📹 End of stream")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}
		p.framesRead++
		p.metrics.FramesRead.Inc()

		quit, err := p.handleFrame(ctx, frame)
		frame.Close()
		if err != nil {
			return err
		}
		if quit {
			p.logger.Info("Quit requested")
			return nil
		}
	}
}

func (p *Pipeline) handleFrame(ctx context.Context, frame models.Frame) (bool, error) {
	// Przetwarzaj tylko co N-tą klatkę
	if !p.sampler.ShouldProcess() {
		return false, nil
	}

	start := time.Now()
	detections, err := p.detector.Detect(frame)
	p.metrics.ObserveDetection(time.Since(start))
	if err != nil {
		p.metrics.DetectionErrors.Inc()
		p.logger.Error("Detection failed on frame %d: %v", frame.Index(), err)
		return false, nil
	}
	p.framesProcessed++
	p.metrics.FramesProcessed.Inc()

	count := counter.CountVehicles(detections)
	p.metrics.LastCount.Set(float64(count))
	p.logger.Debug("Frame %d: %d detections, %d vehicles", frame.Index(), len(detections), count)

	if p.preview != nil {
		quit, err := p.preview.Show(frame, detections, count)
		if err != nil {
			p.logger.Warning("⚠️  Preview failed: %v", err)
		}
		if quit {
			return true, nil
		}
	}

	sample, ok := p.sampler.Offer(count)
	if !ok {
		return false, nil
	}
	return false, p.emit(ctx, sample)
}

// emit hands sample to the reporter, then to the count log. Only the log can fail the run.
func (p *Pipeline) emit(ctx context.Context, sample models.CountSample) error {
	p.samplesEmitted++
	p.metrics.SamplesEmitted.Inc()

	result := p.reporter.Report(ctx, sample)
	if !result.OK {
		p.metrics.ReportFailures.Inc()
		p.logger.Warning("⚠️  Report of count %d failed (request %s): %v", sample.Count, result.RequestID, result.Err)
	}

	if err := p.countLog.Append(sample); err != nil {
		p.logger.Error("Count log write failed: %v", err)
		return err
	}
	p.logger.Info("🚗 Vehicles: %d", sample.Count)
	return nil
}
