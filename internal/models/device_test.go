package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayControl_DefaultsToOff(t *testing.T) {
	assert.Equal(t, RelayOff, (&Device{}).RelayControl())

	var d *Device
	assert.Equal(t, RelayOff, d.RelayControl())
}

func TestRelayControl_ReturnsStoredState(t *testing.T) {
	d := &Device{Relay: Relay{Control: RelayOn}}
	assert.Equal(t, RelayOn, d.RelayControl())
}

func TestDeviceLatest_EmptyStream(t *testing.T) {
	assert.Nil(t, (&Device{}).Latest())
}

func TestDeviceLatest_PicksNewest(t *testing.T) {
	d := &Device{FlowSensor: map[string]*SensorSample{
		"k1": {Timestamp: "2026-08-28 08:00:00"},
		"k2": {Timestamp: "2026-08-28 09:00:00"},
	}}

	latest := d.Latest()

	require.NotNil(t, latest)
	assert.Equal(t, "2026-08-28 09:00:00", latest.Timestamp)
}

func TestWarningList_FillsIDFromKey(t *testing.T) {
	d := &Device{Warning: map[string]*Warning{
		"w1": {Timestamp: 1000},
		"w2": {ID: "already-set", Timestamp: 2000},
	}}

	list := d.WarningList()

	require.Len(t, list, 2)
	ids := map[string]bool{}
	for _, w := range list {
		ids[w.ID] = true
	}
	assert.True(t, ids["w1"])
	assert.True(t, ids["already-set"])
}

func TestWarningList_SkipsNilEntries(t *testing.T) {
	d := &Device{Warning: map[string]*Warning{
		"w1": nil,
		"w2": {Timestamp: 1},
	}}
	assert.Len(t, d.WarningList(), 1)
}

func TestUserPublic_StripsHash(t *testing.T) {
	u := &User{ID: "u1", Username: "tester", PasswordHash: "secret"}

	public := u.Public()

	assert.Empty(t, public.PasswordHash)
	assert.Equal(t, "tester", public.Username)
	// The original keeps its hash.
	assert.Equal(t, "secret", u.PasswordHash)
}

func TestUserDeviceIDs(t *testing.T) {
	u := &User{Devices: map[string]bool{"esp-1": true, "esp-2": false, "esp-3": true}}

	ids := u.DeviceIDs()

	assert.ElementsMatch(t, []string{"esp-1", "esp-3"}, ids)
}
