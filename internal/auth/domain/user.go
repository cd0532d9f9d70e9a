package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	AccessToken  string     `json:"-"` // Encrypted at rest, never returned in JSON
	RefreshToken string     `json:"-"` // Encrypted at rest, never returned in JSON
	TokenExpiry  *time.Time `json:"-"`
	Timezone     string     `json:"timezone,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
