package classifier

import (
	"fmt"
	"trafficsense/internal/models"
)

// statuses holds the display metadata of each traffic class.
var statuses = map[models.TrafficClass]models.TrafficStatus{
	models.Clear: {
		Class:     models.Clear,
		Label:     models.Clear.String(),
		Message:   "Road is Clear. Vehicles can move freely.",
		WaitTime:  "0 - 1 min",
		WaitDelta: "-2 min",
		Pollution: "Low",
	},
	models.Busy: {
		Class:     models.Busy,
		Label:     models.Busy.String(),
		Message:   "Road is getting busy. Moderate traffic detected.",
		WaitTime:  "3 - 5 min",
		WaitDelta: "+1 min",
		Pollution: "Moderate",
	},
	models.TrafficJam: {
		Class:     models.TrafficJam,
		Label:     models.TrafficJam.String(),
		Message:   "Traffic Jam! Congestion is high.",
		WaitTime:  "8+ min",
		WaitDelta: "+5 min",
		Pollution: "High",
	},
}

// Classifier maps a vehicle count to a traffic class with two fixed thresholds.
// The single input feature is the count itself.
type Classifier struct {
	busyThreshold int
	jamThreshold  int
}

// New creates a Classifier: count < busy is Clear, count < jam is Busy, anything else is a jam.
func New(busyThreshold, jamThreshold int) (*Classifier, error) {
	if busyThreshold < 0 || busyThreshold >= jamThreshold {
		return nil, fmt.Errorf("invalid thresholds: busy=%d jam=%d", busyThreshold, jamThreshold)
	}
	return &Classifier{busyThreshold: busyThreshold, jamThreshold: jamThreshold}, nil
}

// Predict returns the class id for count.
func (c *Classifier) Predict(count int) models.TrafficClass {
	switch {
	case count < c.busyThreshold:
		return models.Clear
	case count < c.jamThreshold:
		return models.Busy
	default:
		return models.TrafficJam
	}
}

// Classify returns the full status for count.
func (c *Classifier) Classify(count int) models.TrafficStatus {
	return StatusFor(c.Predict(count))
}

// StatusFor returns the display metadata of class.
func StatusFor(class models.TrafficClass) models.TrafficStatus {
	if s, ok := statuses[class]; ok {
		return s
	}
	return statuses[models.Clear]
}
