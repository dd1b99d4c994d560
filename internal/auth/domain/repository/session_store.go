package repository

import (
	"context"
	"errors"

	"campus-auth/internal/auth/domain/model"
)

// Store-level sentinel errors. Implementations must return these rather than
// driver-specific errors so the use case layer can collapse them into its own
// error surface.
var (
	// ErrSessionNotFound is returned when no session matches the lookup key.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRevoked is returned by RevokeByID when the session was already
	// revoked (or never existed). Exactly one of two concurrent revokes for the
	// same id may succeed; the loser gets this error.
	ErrSessionRevoked = errors.New("session already revoked")
)

// SessionStore defines the interface for session persistence.
//
// RevokeByID must be atomic in the compare-and-swap sense: the first caller
// flips the session from active to revoked, every later caller observes
// ErrSessionRevoked. This is what makes refresh tokens single-use under
// concurrent replay.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error)
	RevokeByID(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
