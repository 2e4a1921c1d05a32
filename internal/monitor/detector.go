package monitor

import (
	"time"

	"github.com/google/uuid"

	"fmd/internal/models"
)

// Detector raises warnings when the two flow sensors diverge beyond a
// threshold, which usually means a leak between the measuring points.
type Detector struct {
	threshold float64
}

func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Check returns a new unresolved warning when the sample's sensor
// difference reaches the threshold, nil otherwise. A non-positive
// threshold disables detection.
func (d *Detector) Check(sample *models.SensorSample, now time.Time) *models.Warning {
	if d.threshold <= 0 || sample == nil {
		return nil
	}
	diff := sample.Sensor1 - sample.Sensor2
	if diff < 0 {
		diff = -diff
	}
	if diff < d.threshold {
		return nil
	}
	return &models.Warning{
		ID:              uuid.NewString(),
		Timestamp:       now.UnixMilli(),
		FlowDifference1: sample.Sensor1,
		FlowDifference2: sample.Sensor2,
		FlowDifference:  diff,
		Resolved:        false,
	}
}
