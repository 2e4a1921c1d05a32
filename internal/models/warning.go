package models

import "time"

// Warning records a sensor-divergence event. Timestamp is epoch
// milliseconds, as written by the firmware.
type Warning struct {
	ID              string  `json:"id"`
	Timestamp       int64   `json:"timestamp"`
	FlowDifference1 float64 `json:"flowDifference1"`
	FlowDifference2 float64 `json:"flowDifference2"`
	FlowDifference  float64 `json:"flowDifference"`
	Resolved        bool    `json:"resolved"`
}

// Time converts the epoch-ms timestamp to local time.
func (w *Warning) Time() time.Time {
	return time.UnixMilli(w.Timestamp)
}
