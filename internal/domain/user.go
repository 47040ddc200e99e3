package domain

import "time"

const (
	AuthProviderPassword  = "password"
	AuthProviderAnonymous = "anonymous"
)

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	DisplayName     string     `json:"display_name,omitempty"`
	AuthProvider    string     `json:"auth_provider,omitempty"`
	AuthSubject     string     `json:"-"`
	PasswordHash    string     `json:"-"`
	IsGuest         bool       `json:"is_guest"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// UserProfile es el documento de perfil que el cliente completa tras registrarse.
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username" validate:"required,min=2,max=40"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Birthday  string    `json:"birthday" validate:"required,datetime=2006-01-02"`
	PhotoURL  string    `json:"photo_url,omitempty" validate:"omitempty,max=2048"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
