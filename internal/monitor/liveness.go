package monitor

import (
	"time"

	"fmd/internal/models"
)

// DefaultRecencyWindow mirrors the dashboard's 10-second online check.
const DefaultRecencyWindow = 10 * time.Second

// IsActive reports whether the device's most recent sample is fresher than
// the window. The boundary is exclusive: a sample aged exactly one window is
// offline. Devices without samples, and devices whose freshest sample has an
// unparseable timestamp, are offline.
func IsActive(device *models.Device, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	latest := device.Latest()
	if latest == nil {
		return false
	}
	at, ok := latest.Time()
	if !ok {
		return false
	}
	return now.Sub(at) < window
}
