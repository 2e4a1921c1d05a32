package models

const (
	RelayOn  = "ON"
	RelayOff = "OFF"
)

type Relay struct {
	Control string `json:"control"`
}

type Device struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	FlowSensor map[string]*SensorSample `json:"flow_sensor,omitempty"`
	Relay      Relay                    `json:"relay"`
	Warning    map[string]*Warning      `json:"warning,omitempty"`
}

// RelayControl returns the relay state, defaulting to OFF when the relay
// node was never written.
func (d *Device) RelayControl() string {
	if d == nil || d.Relay.Control == "" {
		return RelayOff
	}
	return d.Relay.Control
}

// Latest returns the device's most recent sample, or nil when it has none.
func (d *Device) Latest() *SensorSample {
	if d == nil || len(d.FlowSensor) == 0 {
		return nil
	}
	return LatestSample(d.FlowSensor)
}

// WarningList flattens the warning map, filling each record's ID from its
// key the way the dashboard did on fetch.
func (d *Device) WarningList() []*Warning {
	if d == nil || len(d.Warning) == 0 {
		return nil
	}
	out := make([]*Warning, 0, len(d.Warning))
	for id, w := range d.Warning {
		if w == nil {
			continue
		}
		if w.ID == "" {
			w.ID = id
		}
		out = append(out, w)
	}
	return out
}
