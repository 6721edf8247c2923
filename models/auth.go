package models

import "time"

type AppUser struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AppUser   `json:"user"`
}

type SendOTPRequest struct {
	Identifier string `json:"identifier"`
}

type VerifyOTPRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Identifier string `json:"identifier"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type OTPCode struct {
	Identifier string
	Code       string
	ExpiresAt  time.Time
}
