package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"fmd/internal/services"
)

type HealthController struct {
	devices   services.DeviceServiceInterface
	auth      services.AuthServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status             string  `json:"status"`
	Uptime             string  `json:"uptime"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	Devices            int     `json:"devices"`
	ActiveDevices      int     `json:"active_devices"`
	Users              int     `json:"users"`
	UnresolvedWarnings int     `json:"unresolved_warnings"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:             "ok",
		Uptime:             formatDuration(uptime),
		UptimeSeconds:      uptime.Seconds(),
		Devices:            hc.devices.CountDevices(),
		ActiveDevices:      hc.devices.CountActiveDevices(time.Now()),
		Users:              hc.auth.CountUsers(),
		UnresolvedWarnings: hc.devices.CountUnresolvedWarnings(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(devices services.DeviceServiceInterface, auth services.AuthServiceInterface) *HealthController {
	return &HealthController{
		devices:   devices,
		auth:      auth,
		startTime: time.Now(),
	}
}
