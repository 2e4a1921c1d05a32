package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"golang.org/x/crypto/bcrypt"

	"fmd/internal/models"
	"fmd/internal/store"
	"fmd/internal/structures"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("admin role required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters with upper, lower, digit and special characters")
)

// RegisterInput is the sign-up form payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required|minLen:3|maxLen:64"`
	Email    string `json:"email" validate:"required|email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

type AuthServiceInterface interface {
	Register(input RegisterInput) (*models.User, error)
	Login(email, password string) (string, *models.User, error)
	Logout(token string)
	CurrentUser(token string) (*models.User, error)
	RequireAdmin(token string) (*models.User, error)
	ChangePassword(token, oldPassword, newPassword string) error
	UpdateProfile(token, username string) error
	SetAvatar(token, url string) error
	ListUsers() []*models.User
	DeleteUser(id string) error
	PruneSessions(now time.Time) int
	CountUsers() int
}

// AuthService keeps accounts in the realtime tree and sessions in memory.
// Credentials are bcrypt-hashed; the plaintext scheme of the system this
// replaces is deliberately not reproduced.
type AuthService struct {
	conf  *structures.Config
	store store.RealtimeStore

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewAuthService(conf *structures.Config, st store.RealtimeStore) AuthServiceInterface {
	return &AuthService{
		conf:     conf,
		store:    st,
		sessions: make(map[string]*Session),
	}
}

func (as *AuthService) bcryptCost() int {
	if as.conf.Auth.BcryptCost >= bcrypt.MinCost && as.conf.Auth.BcryptCost <= bcrypt.MaxCost {
		return as.conf.Auth.BcryptCost
	}
	return bcrypt.DefaultCost
}

// PasswordStrong checks the dashboard's strength rule: at least 8
// characters containing lower, upper, digit and one of !@#$%^&*. .
func PasswordStrong(password string) bool {
	password = strings.TrimSpace(password)
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("!@#$%^&*.", r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func (as *AuthService) Register(input RegisterInput) (*models.User, error) {
	v := validate.Struct(&input)
	if !v.Validate() {
		return nil, v.Errors.OneError()
	}
	if !PasswordStrong(input.Password) {
		return nil, ErrWeakPassword
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if as.findByEmail(email) != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), as.bcryptCost())
	if err != nil {
		return nil, err
	}

	// The first account on a fresh install owns the admin console.
	role := models.RoleUser
	if len(as.allUsers()) == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := as.store.Write("users/"+user.ID, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (as *AuthService) Login(email, password string) (string, *models.User, error) {
	user := as.findByEmail(strings.ToLower(strings.TrimSpace(email)))
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	session := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(as.conf.Auth.SessionTTL),
	}
	as.mu.Lock()
	as.sessions[session.Token] = session
	as.mu.Unlock()

	return session.Token, user.Public(), nil
}

func (as *AuthService) Logout(token string) {
	as.mu.Lock()
	delete(as.sessions, token)
	as.mu.Unlock()
}

func (as *AuthService) CurrentUser(token string) (*models.User, error) {
	as.mu.RLock()
	session, ok := as.sessions[token]
	as.mu.RUnlock()
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, ErrNotAuthenticated
	}
	user, err := as.getUser(session.UserID)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (as *AuthService) RequireAdmin(token string) (*models.User, error) {
	user, err := as.CurrentUser(token)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}

func (as *AuthService) ChangePassword(token, oldPassword, newPassword string) error {
	user, err := as.CurrentUser(token)
	if err != nil {
		return err
	}
	stored, err := as.getUserWithHash(user.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if !PasswordStrong(newPassword) {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), as.bcryptCost())
	if err != nil {
		return err
	}
	return as.store.Patch("users/"+user.ID, map[string]any{"passwordHash": string(hash)})
}

func (as *AuthService) UpdateProfile(token, username string) error {
	user, err := as.CurrentUser(token)
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username must not be empty")
	}
	return as.store.Patch("users/"+user.ID, map[string]any{"username": username})
}

func (as *AuthService) SetAvatar(token, url string) error {
	user, err := as.CurrentUser(token)
	if err != nil {
		return err
	}
	return as.store.Patch("users/"+user.ID, map[string]any{"avatarUrl": url})
}

func (as *AuthService) ListUsers() []*models.User {
	out := make([]*models.User, 0)
	for _, u := range as.allUsers() {
		out = append(out, u.Public())
	}
	return out
}

func (as *AuthService) DeleteUser(id string) error {
	if _, ok := as.store.Fetch("users/" + id); !ok {
		return ErrUserNotFound
	}
	if err := as.store.Delete("users/" + id); err != nil {
		return err
	}
	as.mu.Lock()
	for token, session := range as.sessions {
		if session.UserID == id {
			delete(as.sessions, token)
		}
	}
	as.mu.Unlock()
	return nil
}

// PruneSessions drops expired sessions and reports how many went away.
func (as *AuthService) PruneSessions(now time.Time) int {
	as.mu.Lock()
	defer as.mu.Unlock()
	pruned := 0
	for token, session := range as.sessions {
		if now.After(session.ExpiresAt) {
			delete(as.sessions, token)
			pruned++
		}
	}
	return pruned
}

func (as *AuthService) CountUsers() int {
	return len(as.allUsers())
}

func (as *AuthService) allUsers() map[string]*models.User {
	raw, ok := as.store.Fetch("users")
	if !ok {
		return nil
	}
	users := map[string]*models.User{}
	if err := store.Decode(raw, &users); err != nil {
		return nil
	}
	for id, u := range users {
		if u != nil {
			u.ID = id
		}
	}
	return users
}

func (as *AuthService) findByEmail(email string) *models.User {
	for _, u := range as.allUsers() {
		if u != nil && u.Email == email {
			return u
		}
	}
	return nil
}

func (as *AuthService) getUser(id string) (*models.User, error) {
	u, err := as.getUserWithHash(id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (as *AuthService) getUserWithHash(id string) (*models.User, error) {
	raw, ok := as.store.Fetch("users/" + id)
	if !ok {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := store.Decode(raw, &user); err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}
