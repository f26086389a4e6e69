package video

import (
	"errors"
	"fmt"
	"trafficsense/internal/models"

	"gocv.io/x/gocv"
)

var (
	// ErrOpenSource means the file or stream could not be opened; the run must not start.
	ErrOpenSource = errors.New("cannot open video source")
	// ErrEndOfStream means no further frame could be read. A failed read mid-stream ends the run too.
	ErrEndOfStream = models.ErrEndOfStream
)

// Frame wraps a decoded gocv.Mat with its sequence index.
type Frame struct {
	index int64
	mat   gocv.Mat
}

// Index returns the 1-based position of the frame in the stream.
func (f *Frame) Index() int64 {
	return f.index
}

// Mat exposes the raster for the detector and annotator.
func (f *Frame) Mat() *gocv.Mat {
	return &f.mat
}

// Close releases the underlying Mat.
func (f *Frame) Close() error {
	return f.mat.Close()
}

// Source reads frames sequentially from a video file or stream URL.
type Source struct {
	path    string
	capture *gocv.VideoCapture
	index   int64
}

// Open opens the video source at path.
func Open(path string) (*Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOpenSource, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w %s", ErrOpenSource, path)
	}
	return &Source{path: path, capture: capture}, nil
}

// Next returns the next frame or ErrEndOfStream. Reads are not retried.
func (s *Source) Next() (models.Frame, error) {
	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}
	s.index++
	return &Frame{index: s.index, mat: mat}, nil
}

// FPS reports the source frame rate as advertised by the container, 0 if unknown.
func (s *Source) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

func (s *Source) Close() error {
	return s.capture.Close()
}
