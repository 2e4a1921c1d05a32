package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"fmd/internal/models"
	"fmd/internal/monitor"
	"fmd/internal/store"
	"fmd/internal/structures"
)

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceExists    = errors.New("device already registered")
	ErrWarningNotFound = errors.New("warning not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyLinked   = errors.New("device already linked to account")
	ErrNotLinked       = errors.New("device not linked to account")
)

// DeviceStatus is the derived liveness view of a device. Online is
// recomputed on every read; it is never stored.
type DeviceStatus struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	LastSeen string `json:"lastSeen,omitempty"`
	Relay    string `json:"relay"`
}

type DeviceServiceInterface interface {
	RegisterDevice(id, name string) (*models.Device, error)
	DeleteDevice(id string) error
	ListDevices() []*models.Device
	ListUserDevices(userID string) ([]*models.Device, error)
	GetDevice(id string) (*models.Device, error)
	LatestSample(id string) (*models.SensorSample, error)
	DeviceStatus(id string, now time.Time) (DeviceStatus, error)
	IngestSample(id string, sample *models.SensorSample, now time.Time) (*models.Warning, error)
	SetRelay(id, state string) error
	ToggleRelay(id string) (string, error)
	History(id string, criteria monitor.HistoryCriteria) ([]*models.SensorSample, error)
	DeleteHistory(id string) error
	Usage(id string, opts monitor.UsageOptions) (monitor.UsageReport, error)
	Warnings(id string) ([]*models.Warning, error)
	WarningStats(id string) (monitor.WarningStats, error)
	ResolveWarning(deviceID, warningID string, resolved bool) error
	UnresolvedToday(userID string, now time.Time) (int, error)
	LinkDevice(userID, deviceID string) error
	UnlinkDevice(userID, deviceID string) error
	CountDevices() int
	CountActiveDevices(now time.Time) int
	CountUnresolvedWarnings() int
}

type DeviceService struct {
	conf     *structures.Config
	store    store.RealtimeStore
	detector *monitor.Detector
}

func NewDeviceService(conf *structures.Config, st store.RealtimeStore) DeviceServiceInterface {
	return &DeviceService{
		conf:     conf,
		store:    st,
		detector: monitor.NewDetector(conf.Monitor.WarningThreshold),
	}
}

func devicePath(id string) string { return "devices/" + id }

func (ds *DeviceService) RegisterDevice(id, name string) (*models.Device, error) {
	if id == "" {
		return nil, fmt.Errorf("device id must not be empty")
	}
	if _, ok := ds.store.Fetch(devicePath(id)); ok {
		return nil, ErrDeviceExists
	}
	device := &models.Device{
		ID:    id,
		Name:  name,
		Relay: models.Relay{Control: models.RelayOff},
	}
	if err := ds.store.Write(devicePath(id), device); err != nil {
		return nil, err
	}
	return device, nil
}

func (ds *DeviceService) DeleteDevice(id string) error {
	if _, ok := ds.store.Fetch(devicePath(id)); !ok {
		return ErrDeviceNotFound
	}
	if err := ds.store.Delete(devicePath(id)); err != nil {
		return err
	}
	// Drop dangling links so user device lists stay consistent.
	if raw, ok := ds.store.Fetch("users"); ok {
		users := map[string]*models.User{}
		if err := store.Decode(raw, &users); err == nil {
			for userID, u := range users {
				if u != nil && u.Devices[id] {
					_ = ds.store.Delete("users/" + userID + "/devices/" + id)
				}
			}
		}
	}
	return nil
}

func (ds *DeviceService) GetDevice(id string) (*models.Device, error) {
	raw, ok := ds.store.Fetch(devicePath(id))
	if !ok {
		return nil, ErrDeviceNotFound
	}
	var device models.Device
	if err := store.Decode(raw, &device); err != nil {
		return nil, err
	}
	device.ID = id
	return &device, nil
}

func (ds *DeviceService) ListDevices() []*models.Device {
	raw, ok := ds.store.Fetch("devices")
	if !ok {
		return nil
	}
	byID := map[string]*models.Device{}
	if err := store.Decode(raw, &byID); err != nil {
		return nil
	}
	out := make([]*models.Device, 0, len(byID))
	for id, d := range byID {
		if d == nil {
			continue
		}
		d.ID = id
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (ds *DeviceService) ListUserDevices(userID string) ([]*models.Device, error) {
	user, err := ds.getUser(userID)
	if err != nil {
		return nil, err
	}
	ids := user.DeviceIDs()
	sort.Strings(ids)
	out := make([]*models.Device, 0, len(ids))
	for _, id := range ids {
		device, err := ds.GetDevice(id)
		if err != nil {
			// A device deleted from the console may still be linked; the
			// link is stale, not fatal.
			continue
		}
		out = append(out, device)
	}
	return out, nil
}

func (ds *DeviceService) LatestSample(id string) (*models.SensorSample, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return nil, err
	}
	return device.Latest(), nil
}

func (ds *DeviceService) DeviceStatus(id string, now time.Time) (DeviceStatus, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return DeviceStatus{}, err
	}
	status := DeviceStatus{
		DeviceID: id,
		Name:     device.Name,
		Online:   monitor.IsActive(device, now, ds.conf.Monitor.RecencyWindow),
		Relay:    device.RelayControl(),
	}
	if latest := device.Latest(); latest != nil {
		status.LastSeen = latest.Timestamp
	}
	return status, nil
}

// sampleKey produces keys that sort in chronological order. Nothing reads
// samples by key order anymore, but the firmware's own keys did sort and
// external consumers of the tree may still assume it.
func sampleKey(now time.Time) string {
	return fmt.Sprintf("%013d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func (ds *DeviceService) IngestSample(id string, sample *models.SensorSample, now time.Time) (*models.Warning, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, fmt.Errorf("sample must not be nil")
	}
	if sample.Timestamp == "" {
		sample.Timestamp = now.Format(models.SampleTimeLayout)
	}
	if sample.RelayState == "" {
		sample.RelayState = device.RelayControl()
	}

	if err := ds.store.Write(devicePath(id)+"/flow_sensor/"+sampleKey(now), sample); err != nil {
		return nil, err
	}

	warning := ds.detector.Check(sample, now)
	if warning != nil {
		if err := ds.store.Write(devicePath(id)+"/warning/"+warning.ID, warning); err != nil {
			return nil, err
		}
	}
	return warning, nil
}

func (ds *DeviceService) SetRelay(id, state string) error {
	if state != models.RelayOn && state != models.RelayOff {
		return fmt.Errorf("invalid relay state %q", state)
	}
	if _, ok := ds.store.Fetch(devicePath(id)); !ok {
		return ErrDeviceNotFound
	}
	return ds.store.Patch(devicePath(id)+"/relay", map[string]any{"control": state})
}

// ToggleRelay flips the relay and returns the new state. Concurrent
// togglers are last-write-wins, same as the store underneath.
func (ds *DeviceService) ToggleRelay(id string) (string, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return "", err
	}
	next := models.RelayOn
	if device.RelayControl() == models.RelayOn {
		next = models.RelayOff
	}
	if err := ds.SetRelay(id, next); err != nil {
		return "", err
	}
	return next, nil
}

func (ds *DeviceService) History(id string, criteria monitor.HistoryCriteria) ([]*models.SensorSample, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return nil, err
	}
	samples := make([]*models.SensorSample, 0, len(device.FlowSensor))
	for _, s := range device.FlowSensor {
		samples = append(samples, s)
	}
	return monitor.FilterHistory(samples, criteria), nil
}

// DeleteHistory clears the sample stream and all warnings while keeping
// the device's name and relay state, mirroring the dashboard's bulk-delete.
func (ds *DeviceService) DeleteHistory(id string) error {
	if _, ok := ds.store.Fetch(devicePath(id)); !ok {
		return ErrDeviceNotFound
	}
	return ds.store.Patch(devicePath(id), map[string]any{
		"flow_sensor": nil,
		"warning":     nil,
	})
}

func (ds *DeviceService) Usage(id string, opts monitor.UsageOptions) (monitor.UsageReport, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return monitor.UsageReport{}, err
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = ds.conf.Monitor.SampleInterval
	}
	if opts.LeakThreshold <= 0 {
		opts.LeakThreshold = ds.conf.Monitor.LeakThreshold
	}
	if opts.LeakRunLength <= 0 {
		opts.LeakRunLength = ds.conf.Monitor.LeakRunLength
	}
	samples := make([]*models.SensorSample, 0, len(device.FlowSensor))
	for _, s := range device.FlowSensor {
		samples = append(samples, s)
	}
	return monitor.ComputeUsage(samples, opts), nil
}

func (ds *DeviceService) Warnings(id string) ([]*models.Warning, error) {
	device, err := ds.GetDevice(id)
	if err != nil {
		return nil, err
	}
	warnings := device.WarningList()
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Timestamp > warnings[j].Timestamp })
	return warnings, nil
}

func (ds *DeviceService) WarningStats(id string) (monitor.WarningStats, error) {
	warnings, err := ds.Warnings(id)
	if err != nil {
		return monitor.WarningStats{}, err
	}
	return monitor.AggregateWarnings(warnings), nil
}

func (ds *DeviceService) ResolveWarning(deviceID, warningID string, resolved bool) error {
	path := devicePath(deviceID) + "/warning/" + warningID
	if _, ok := ds.store.Fetch(path); !ok {
		return ErrWarningNotFound
	}
	return ds.store.Patch(path, map[string]any{"resolved": resolved})
}

// UnresolvedToday sums today's open warnings across every device linked to
// the user, feeding the home-screen badge.
func (ds *DeviceService) UnresolvedToday(userID string, now time.Time) (int, error) {
	devices, err := ds.ListUserDevices(userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, device := range devices {
		total += monitor.CountUnresolvedToday(device.WarningList(), now)
	}
	return total, nil
}

func (ds *DeviceService) LinkDevice(userID, deviceID string) error {
	user, err := ds.getUser(userID)
	if err != nil {
		return err
	}
	if _, ok := ds.store.Fetch(devicePath(deviceID)); !ok {
		return ErrDeviceNotFound
	}
	if user.Devices[deviceID] {
		return ErrAlreadyLinked
	}
	return ds.store.Patch("users/"+userID+"/devices", map[string]any{deviceID: true})
}

func (ds *DeviceService) UnlinkDevice(userID, deviceID string) error {
	user, err := ds.getUser(userID)
	if err != nil {
		return err
	}
	if !user.Devices[deviceID] {
		return ErrNotLinked
	}
	return ds.store.Delete("users/" + userID + "/devices/" + deviceID)
}

func (ds *DeviceService) CountDevices() int {
	return len(ds.ListDevices())
}

func (ds *DeviceService) CountActiveDevices(now time.Time) int {
	count := 0
	for _, device := range ds.ListDevices() {
		if monitor.IsActive(device, now, ds.conf.Monitor.RecencyWindow) {
			count++
		}
	}
	return count
}

func (ds *DeviceService) CountUnresolvedWarnings() int {
	count := 0
	for _, device := range ds.ListDevices() {
		for _, w := range device.WarningList() {
			if !w.Resolved {
				count++
			}
		}
	}
	return count
}

func (ds *DeviceService) getUser(userID string) (*models.User, error) {
	raw, ok := ds.store.Fetch("users/" + userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := store.Decode(raw, &user); err != nil {
		return nil, err
	}
	user.ID = userID
	return &user, nil
}
