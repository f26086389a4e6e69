package models

import "errors"

// Detection represents a single object found by the detector in one frame.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Frame is one decoded video frame. Index grows by one per frame read from the source.
// The pipeline owns a frame until it calls Close.
type Frame interface {
	Index() int64
	Close() error
}

// ErrEndOfStream is returned by a frame source that has no more frames.
var ErrEndOfStream = errors.New("end of video stream")
