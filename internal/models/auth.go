package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" form:"username" validate:"required"`
	Password  string `json:"password" form:"password" validate:"required"`
	IP        string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

// LoginResponse returns the issued tokens, user info and the role-based
// landing page the client should navigate to.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	RedirectTo   string    `json:"redirect_to"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// CreateAccountRequest is the account-creation payload.
type CreateAccountRequest struct {
	Username   string `json:"username" form:"username" validate:"required"`
	PersonName string `json:"person_name" form:"person_name" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required,min=6"`
	UserType   string `json:"user_type" form:"user_type" validate:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	PersonName string   `json:"person_name"`
	UserType   UserType `json:"user_type"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	UserType   UserType `json:"user_type"`
	PersonName string   `json:"person_name"`
	jwt.RegisteredClaims
}
