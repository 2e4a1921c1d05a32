package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTime_ParsesFirmwareLayout(t *testing.T) {
	s := &SensorSample{Timestamp: "2026-08-28 14:30:05"}

	at, ok := s.Time()

	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 28, 14, 30, 5, 0, time.Local), at)
}

func TestSampleTime_Malformed(t *testing.T) {
	for _, ts := range []string{"", "yesterday", "2026-08-28T14:30:05Z", "28/08/2026 14:30"} {
		s := &SensorSample{Timestamp: ts}
		_, ok := s.Time()
		assert.False(t, ok, ts)
	}
}

func TestSampleTime_NilReceiver(t *testing.T) {
	var s *SensorSample
	_, ok := s.Time()
	assert.False(t, ok)
}

func TestInstantFlow_AveragesBothSensors(t *testing.T) {
	s := &SensorSample{Sensor1: 2.0, Sensor2: 3.0}
	assert.InDelta(t, 2.5, s.InstantFlow(), 1e-9)
}

func TestSampleFromValue_TolerantDecoding(t *testing.T) {
	s := SampleFromValue(map[string]any{
		"timestamp":  "2026-08-28 10:00:00",
		"sensor1":    "1.5",
		"sensor2":    2,
		"relayState": "ON",
	})

	require.NotNil(t, s)
	assert.InDelta(t, 1.5, s.Sensor1, 1e-9)
	assert.InDelta(t, 2.0, s.Sensor2, 1e-9)
	assert.Equal(t, "ON", s.RelayState)
}

func TestSampleFromValue_NonObject(t *testing.T) {
	assert.Nil(t, SampleFromValue("scalar"))
	assert.Nil(t, SampleFromValue(nil))
}

func TestLatestSample_ByTimestampNotKeyOrder(t *testing.T) {
	// The key order contradicts the timestamps on purpose.
	samples := map[string]*SensorSample{
		"zzz": {Timestamp: "2026-08-28 10:00:00"},
		"aaa": {Timestamp: "2026-08-28 12:00:00"},
		"mmm": {Timestamp: "2026-08-28 11:00:00"},
	}

	latest := LatestSample(samples)

	require.NotNil(t, latest)
	assert.Equal(t, "2026-08-28 12:00:00", latest.Timestamp)
}

func TestLatestSample_SkipsMalformedTimestamps(t *testing.T) {
	samples := map[string]*SensorSample{
		"a": {Timestamp: "not a time"},
		"b": {Timestamp: "2026-08-28 09:00:00"},
	}

	latest := LatestSample(samples)

	require.NotNil(t, latest)
	assert.Equal(t, "2026-08-28 09:00:00", latest.Timestamp)
}

func TestLatestSample_AllMalformed(t *testing.T) {
	samples := map[string]*SensorSample{
		"a": {Timestamp: "bogus"},
	}
	assert.Nil(t, LatestSample(samples))
}
