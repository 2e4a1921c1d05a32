package models

import (
	"time"

	"github.com/spf13/cast"
)

// SampleTimeLayout matches the firmware's strftime format. Timestamps are
// written in device-local time without a zone suffix.
const SampleTimeLayout = "2006-01-02 15:04:05"

type SensorSample struct {
	Timestamp  string  `json:"timestamp"`
	Sensor1    float64 `json:"sensor1"`
	Sensor2    float64 `json:"sensor2"`
	RelayState string  `json:"relayState,omitempty"`
}

// Time parses the sample timestamp. Malformed timestamps return the zero
// time and ok=false; callers treat those samples as unordered/stale.
func (s *SensorSample) Time() (time.Time, bool) {
	if s == nil || s.Timestamp == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(SampleTimeLayout, s.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// InstantFlow is the momentary flow rate in L/min, averaged over both
// sensors.
func (s *SensorSample) InstantFlow() float64 {
	return (s.Sensor1 + s.Sensor2) / 2
}

// SampleFromValue decodes a loosely typed tree node into a sample. Numeric
// fields tolerate string and integer encodings, which the firmware produces
// depending on its JSON library mood.
func SampleFromValue(v any) *SensorSample {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &SensorSample{
		Timestamp:  cast.ToString(m["timestamp"]),
		Sensor1:    cast.ToFloat64(m["sensor1"]),
		Sensor2:    cast.ToFloat64(m["sensor2"]),
		RelayState: cast.ToString(m["relayState"]),
	}
}

// LatestSample returns the most recent sample by parsed timestamp. Samples
// with unparseable timestamps never win. The original dashboard picked the
// lexicographically largest key instead; comparing actual timestamps keeps
// the intent without depending on the key generator.
func LatestSample(samples map[string]*SensorSample) *SensorSample {
	var latest *SensorSample
	var latestAt time.Time
	for _, s := range samples {
		at, ok := s.Time()
		if !ok {
			continue
		}
		if latest == nil || at.After(latestAt) {
			latest = s
			latestAt = at
		}
	}
	return latest
}
