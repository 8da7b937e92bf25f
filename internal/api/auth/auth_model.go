package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// The planner has exactly one user: its owner. Login is a password gate
// that issues a short-lived access token for the mutating endpoints.

// LoginRequest represents the expected JSON body for login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// Claims carried in the access token.
type Claims struct {
	Scope                string `json:"scope,omitempty"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, Subject...
}

type contextKey string

const authenticatedKey contextKey = "authenticated"
