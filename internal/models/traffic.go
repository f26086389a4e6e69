package models

import "time"

// TrafficClass is the classifier output id.
type TrafficClass int

const (
	Clear TrafficClass = iota
	Busy
	TrafficJam
)

func (c TrafficClass) String() string {
	switch c {
	case Clear:
		return "Clear"
	case Busy:
		return "Busy"
	case TrafficJam:
		return "Traffic Jam"
	}
	return "Unknown"
}

// TrafficStatus is the human-facing description of a TrafficClass.
type TrafficStatus struct {
	Class     TrafficClass `json:"class"`
	Label     string       `json:"label"`
	Message   string       `json:"message"`
	WaitTime  string       `json:"wait_time"`
	WaitDelta string       `json:"wait_delta"`
	Pollution string       `json:"pollution"`
}

// Snapshot is one dashboard refresh: the pulled count, its classification and the chart window.
type Snapshot struct {
	Count     int           `json:"count"`
	Status    TrafficStatus `json:"status"`
	History   []CountSample `json:"history"`
	Error     string        `json:"error,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}
