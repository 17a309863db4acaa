package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	Stats        GameStats `json:"stats"`
}

// Membership holds the externally managed entitlement flags of a user
type Membership struct {
	VIP             bool       `json:"vip"`
	UnlimitedEnergy bool       `json:"unlimited_energy"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Profile is the public part of a user
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}
