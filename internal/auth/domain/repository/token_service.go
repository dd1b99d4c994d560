package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for signing and verifying token pairs.
// Access-token lifetime is owned by the implementation's own configuration;
// the use case layer never parses it.
type TokenService interface {
	SignAccessToken(ctx context.Context, userID, email string) (string, error)
	SignRefreshToken(ctx context.Context, userID, email string) (string, error)
	// VerifyRefreshToken fails on invalid signature, malformed token, or
	// signer-level expiry. It performs no session lookup.
	VerifyRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the payload embedded in both access and refresh tokens
type Claims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
