package models

import "time"

// TimestampLayout is the layout of the timestamp column in the count log.
const TimestampLayout = "2006-01-02 15:04:05"

// CountSample is one emitted vehicle count. It is passed by value to every sink.
type CountSample struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// CountPayload is the JSON body of the collector push and pull endpoints.
type CountPayload struct {
	Count int `json:"count"`
}

// SampleStats contains statistics about the collector's sample history.
type SampleStats struct {
	Total   int       `json:"total"`
	Min     int       `json:"min"`
	Max     int       `json:"max"`
	Average float64   `json:"average"`
	LastAt  time.Time `json:"last_at"`
}
