package security

import (
	"context"
	"errors"
	"math"
	"time"

	"campus-auth/internal/auth/config"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/shared/ttl"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// JWTokenService implements JWT token generation and validation for both token
// kinds. Access and refresh tokens are signed with the same key but carry
// different lifetimes and audiences, so one can never stand in for the other.
type JWTokenService struct {
	secretKey  []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg *config.Config) (*JWTokenService, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.JWTIssuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("jwt access token TTL must be positive")
	}

	refreshMillis, err := ttl.ToMilliseconds(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	if refreshMillis > math.MaxInt64/int64(time.Millisecond) {
		return nil, errors.New("jwt refresh token TTL exceeds the representable duration range")
	}

	return &JWTokenService{
		secretKey:  []byte(cfg.JWTSecretKey),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: time.Duration(refreshMillis) * time.Millisecond,
	}, nil
}

func (s *JWTokenService) sign(userID, email, audience string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := &repository.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID keeps two tokens signed within the same second distinct.
			ID:        uuid.New().String(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// SignAccessToken generates a short-lived access token for the given user
func (s *JWTokenService) SignAccessToken(ctx context.Context, userID, email string) (string, error) {
	return s.sign(userID, email, audienceAccess, s.accessTTL)
}

// SignRefreshToken generates a long-lived refresh token for the given user
func (s *JWTokenService) SignRefreshToken(ctx context.Context, userID, email string) (string, error) {
	return s.sign(userID, email, audienceRefresh, s.refreshTTL)
}

func (s *JWTokenService) verify(tokenString, audience string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&repository.Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenSignatureInvalid
			}
			return s.secretKey, nil
		},
		jwt.WithAudience(audience),
		jwt.WithIssuer(s.issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	return s.verify(tokenString, audienceAccess)
}

// VerifyRefreshToken validates a refresh token's signature and claims. It does
// not consult the session store; that is the use case layer's job.
func (s *JWTokenService) VerifyRefreshToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	return s.verify(tokenString, audienceRefresh)
}

// Ensure JWTokenService implements the TokenService port
var _ repository.TokenService = (*JWTokenService)(nil)
