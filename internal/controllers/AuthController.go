package controllers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"fmd/internal/providers"
	"fmd/internal/services"
)

const maxAvatarSize = 5 << 20 // 5 MB

type AuthController struct {
	logger  providers.Logger
	auth    services.AuthServiceInterface
	uploads providers.UploadProviderInterface
}

func NewAuthController(logger providers.Logger, auth services.AuthServiceInterface, uploads providers.UploadProviderInterface) *AuthController {
	return &AuthController{
		logger:  logger,
		auth:    auth,
		uploads: uploads,
	}
}

func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decodeBody(w, r, &input) {
		return
	}
	user, err := ac.auth.Register(input)
	if err != nil {
		serviceError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeAuth, "Registered account %s", user.Email)
	writeJSON(w, http.StatusCreated, user)
}

func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	token, user, err := ac.auth.Login(payload.Email, payload.Password)
	if err != nil {
		ac.logger.Warnf(providers.TypeAuth, "Failed login for %s", payload.Email)
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.auth.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := ac.auth.CurrentUser(bearerToken(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (ac *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.ChangePassword(bearerToken(r), payload.OldPassword, payload.NewPassword); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.UpdateProfile(bearerToken(r), payload.Username); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar stores a multipart image and patches its URL onto the
// account.
func (ac *AuthController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if _, err := ac.auth.CurrentUser(token); err != nil {
		serviceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		http.Error(w, "Unsupported image type", http.StatusBadRequest)
		return
	}

	url, err := ac.uploads.SaveBlob(data, ext)
	if err != nil {
		ac.logger.Errorf(providers.TypeAuth, "Avatar upload failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := ac.auth.SetAvatar(token, url); err != nil {
		serviceError(w, err)
		return
	}

	gson, _ := json.Marshal(map[string]string{"avatarUrl": url})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
