package controllers

import (
	"net/http"

	"fmd/internal/providers"
	"fmd/internal/services"
)

// AdminController is the management surface behind the admin role: account
// review and device registration. Regular accounts only link devices that
// already exist here.
type AdminController struct {
	logger  providers.Logger
	auth    services.AuthServiceInterface
	devices services.DeviceServiceInterface
}

func NewAdminController(logger providers.Logger, auth services.AuthServiceInterface, devices services.DeviceServiceInterface) *AdminController {
	return &AdminController{
		logger:  logger,
		auth:    auth,
		devices: devices,
	}
}

func (ac *AdminController) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, err := ac.auth.RequireAdmin(bearerToken(r)); err != nil {
		serviceError(w, err)
		return false
	}
	return true
}

func (ac *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, ac.auth.ListUsers())
}

func (ac *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.DeleteUser(payload.ID); err != nil {
		serviceError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeAuth, "Admin removed account %s", payload.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AdminController) ListDevices(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, ac.devices.ListDevices())
}

func (ac *AdminController) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	var payload struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	device, err := ac.devices.RegisterDevice(payload.ID, payload.Name)
	if err != nil {
		serviceError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Registered device %s (%s)", device.ID, device.Name)
	writeJSON(w, http.StatusCreated, device)
}

func (ac *AdminController) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.devices.DeleteDevice(payload.ID); err != nil {
		serviceError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Deleted device %s", payload.ID)
	w.WriteHeader(http.StatusNoContent)
}
