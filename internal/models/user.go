package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"passwordHash,omitempty"`
	AvatarURL    string          `json:"avatarUrl,omitempty"`
	Role         string          `json:"role,omitempty"`
	Devices      map[string]bool `json:"devices,omitempty"`
}

// Public strips credential material for API responses.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	pub := *u
	pub.PasswordHash = ""
	return &pub
}

// DeviceIDs lists the devices linked to the account.
func (u *User) DeviceIDs() []string {
	if u == nil || len(u.Devices) == 0 {
		return nil
	}
	ids := make([]string, 0, len(u.Devices))
	for id, linked := range u.Devices {
		if linked {
			ids = append(ids, id)
		}
	}
	return ids
}
