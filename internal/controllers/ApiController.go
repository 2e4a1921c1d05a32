package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"fmd/internal/models"
	"fmd/internal/monitor"
	"fmd/internal/providers"
	"fmd/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	devices services.DeviceServiceInterface
	auth    services.AuthServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, devices services.DeviceServiceInterface, auth services.AuthServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		devices: devices,
		auth:    auth,
		cache:   cache,
		metrics: metrics,
	}
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return header
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// serviceError maps domain errors onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDeviceNotFound),
		errors.Is(err, services.ErrWarningNotFound),
		errors.Is(err, services.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrDeviceExists),
		errors.Is(err, services.ErrAlreadyLinked),
		errors.Is(err, services.ErrNotLinked),
		errors.Is(err, services.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrWeakPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := ac.auth.CurrentUser(bearerToken(r))
	if err != nil {
		serviceError(w, err)
		return nil, false
	}
	return user, true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		serviceError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func deviceID(r *http.Request) string {
	return r.URL.Query().Get("id")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

// GetDevices lists the devices linked to the calling account.
func (ac *ApiController) GetDevices(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.requireUser(w, r)
	if !ok {
		return
	}
	ac.serveFromCacheOrCompute(w, "devices:"+user.ID, func() (any, error) {
		return ac.devices.ListUserDevices(user.ID)
	})
}

func (ac *ApiController) GetDevice(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	ac.serveFromCacheOrCompute(w, "device:"+id, func() (any, error) {
		return ac.devices.GetDevice(id)
	})
}

func (ac *ApiController) GetLatest(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	ac.serveFromCacheOrCompute(w, "latest:"+id, func() (any, error) {
		return ac.devices.LatestSample(id)
	})
}

func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	// Liveness flips on a 10 second window; caching the answer would hand
	// out stale online flags.
	status, err := ac.devices.DeviceStatus(deviceID(r), time.Now())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// historyCriteria builds the filter from query parameters. Absent
// parameters leave their predicate unconstrained.
func historyCriteria(r *http.Request) monitor.HistoryCriteria {
	q := r.URL.Query()
	criteria := monitor.HistoryCriteria{
		RelayState: q.Get("relay"),
	}
	if from, err := time.ParseInLocation("2006-01-02", q.Get("from"), time.Local); err == nil {
		criteria.From = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", q.Get("to"), time.Local); err == nil {
		criteria.To = &to
	}
	if q.Has("s1min") || q.Has("s1max") {
		criteria.Sensor1Range = queryRange(q.Get("s1min"), q.Get("s1max"))
	}
	if q.Has("s2min") || q.Has("s2max") {
		criteria.Sensor2Range = queryRange(q.Get("s2min"), q.Get("s2max"))
	}
	if q.Has("diff") {
		diff := cast.ToFloat64(q.Get("diff"))
		criteria.SensorDifference = &diff
	}
	return criteria
}

func queryRange(minRaw, maxRaw string) monitor.Range {
	out := monitor.UnboundedRange
	if minRaw != "" {
		out.Min = cast.ToFloat64(minRaw)
	}
	if maxRaw != "" {
		out.Max = cast.ToFloat64(maxRaw)
	}
	return out
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	criteria := historyCriteria(r)
	ac.serveFromCacheOrCompute(w, "history:"+r.URL.RawQuery, func() (any, error) {
		return ac.devices.History(id, criteria)
	})
}

func (ac *ApiController) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.devices.DeleteHistory(payload.ID); err != nil {
		serviceError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeHTTP, "History cleared for device %s", payload.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetUsage(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	opts := monitor.UsageOptions{}
	q := r.URL.Query()
	if from, err := time.ParseInLocation("2006-01-02", q.Get("from"), time.Local); err == nil {
		opts.From = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", q.Get("to"), time.Local); err == nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		opts.To = &end
	}
	ac.serveFromCacheOrCompute(w, "usage:"+r.URL.RawQuery, func() (any, error) {
		return ac.devices.Usage(id, opts)
	})
}

func (ac *ApiController) GetWarnings(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	ac.serveFromCacheOrCompute(w, "warnings:"+id, func() (any, error) {
		return ac.devices.Warnings(id)
	})
}

func (ac *ApiController) GetWarningStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	id := deviceID(r)
	ac.serveFromCacheOrCompute(w, "warningstats:"+id, func() (any, error) {
		return ac.devices.WarningStats(id)
	})
}

func (ac *ApiController) ResolveWarning(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	var payload struct {
		DeviceID  string `json:"deviceId"`
		WarningID string `json:"warningId"`
		Resolved  *bool  `json:"resolved"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	resolved := true
	if payload.Resolved != nil {
		resolved = *payload.Resolved
	}
	if err := ac.devices.ResolveWarning(payload.DeviceID, payload.WarningID, resolved); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRelay switches the valve. A payload without a state toggles it.
func (ac *ApiController) SetRelay(w http.ResponseWriter, r *http.Request) {
	if _, ok := ac.requireUser(w, r); !ok {
		return
	}
	var payload struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	state := payload.State
	if state == "" {
		next, err := ac.devices.ToggleRelay(payload.ID)
		if err != nil {
			serviceError(w, err)
			return
		}
		state = next
	} else {
		if err := ac.devices.SetRelay(payload.ID, state); err != nil {
			serviceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

// Ingest accepts a firmware sample push. Devices authenticate by identity
// only; they carry no user session.
func (ac *ApiController) Ingest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DeviceID string              `json:"deviceId"`
		Sample   models.SensorSample `json:"sample"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	warning, err := ac.devices.IngestSample(payload.DeviceID, &payload.Sample, time.Now())
	if err != nil {
		serviceError(w, err)
		return
	}
	ac.metrics.IncSamplesIngested(payload.DeviceID)
	if warning != nil {
		ac.metrics.IncWarningsRaised(payload.DeviceID)
		ac.logger.Warnf(providers.TypeHTTP, "Device %s sensors diverge by %.2f L/min", payload.DeviceID, warning.FlowDifference)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"warning": warning})
}

func (ac *ApiController) GetUnresolvedToday(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.requireUser(w, r)
	if !ok {
		return
	}
	count, err := ac.devices.UnresolvedToday(user.ID, time.Now())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (ac *ApiController) LinkDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.requireUser(w, r)
	if !ok {
		return
	}
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.devices.LinkDevice(user.ID, payload.ID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) UnlinkDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.requireUser(w, r)
	if !ok {
		return
	}
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.devices.UnlinkDevice(user.ID, payload.ID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
