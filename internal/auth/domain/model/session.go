package model

import "time"

// Session binds one issued token pair to a user and an expiration. A session is
// created by login or refresh, revoked by rotation, logout, or a later login,
// and never mutated otherwise.
type Session struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	UserID       string     `json:"user_id" bson:"user_id"`
	AccessToken  string     `json:"access_token" bson:"access_token"`
	RefreshToken string     `json:"refresh_token" bson:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at" bson:"expires_at"`
	IPAddress    string     `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty" bson:"revoked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}

// IsRevoked reports whether the session has been rotated, superseded, or logged out.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsExpired reports whether the session's refresh window has passed at the given instant.
// Expiry is a read-time judgment; no background sweep flips session state.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
