package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSessionStore implements the SessionStore interface using Redis.
//
// Layout under the configured prefix:
//
//	id:<sessionID>        -> session JSON, expires with the session
//	refresh:<token>       -> sessionID, same expiry
//	user:<userID>         -> set of sessionIDs
//
// Redis key expiry doubles as the expired-session sweep; revocation deletes
// the id key with GETDEL so only the first of two concurrent revokes
// observes the value.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisSessionStore creates a Redis-based session store. Prefix may be empty.
func NewRedisSessionStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisSessionStore {
	if prefix == "" {
		prefix = "session:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisSessionStore) idKey(sessionID string) string {
	return s.prefix + "id:" + sessionID
}

func (s *RedisSessionStore) refreshKey(token string) string {
	return s.prefix + "refresh:" + token
}

func (s *RedisSessionStore) userKey(userID string) string {
	return s.prefix + "user:" + userID
}

// CreateSession stores the session and its lookup keys with the session's TTL
func (s *RedisSessionStore) CreateSession(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	expiry := time.Until(session.ExpiresAt)
	if expiry <= 0 {
		// Keep a minimal TTL so Redis never stores already-expired sessions.
		expiry = time.Second
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.idKey(session.ID), payload, expiry)
	pipe.Set(ctx, s.refreshKey(session.RefreshToken), session.ID, expiry)
	pipe.SAdd(ctx, s.userKey(session.UserID), session.ID)
	pipe.Expire(ctx, s.userKey(session.UserID), expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.logger.Debug("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID))
	return nil
}

// GetSessionByRefreshToken resolves the refresh token index and loads the session
func (s *RedisSessionStore) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	if refreshToken == "" {
		return nil, repository.ErrSessionNotFound
	}

	sessionID, err := s.client.Get(ctx, s.refreshKey(refreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, err
	}

	payload, err := s.client.Get(ctx, s.idKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RevokeByID removes the session. GETDEL hands the stored value to exactly one
// caller, so a concurrent revoke of the same id fails with ErrSessionRevoked.
func (s *RedisSessionStore) RevokeByID(ctx context.Context, id string) error {
	payload, err := s.client.GetDel(ctx, s.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return repository.ErrSessionRevoked
		}
		return err
	}

	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.refreshKey(session.RefreshToken))
	pipe.SRem(ctx, s.userKey(session.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.logger.Debug("session revoked", zap.String("session_id", id))
	return nil
}

// RevokeAllForUser removes every session in the user's set. Unknown users and
// empty sets are a no-op.
func (s *RedisSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	sessionIDs, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return err
	}

	for _, sessionID := range sessionIDs {
		if err := s.RevokeByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionRevoked) {
			return err
		}
	}

	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return err
	}

	s.logger.Debug("user sessions revoked",
		zap.String("user_id", userID),
		zap.Int("count", len(sessionIDs)))
	return nil
}

// Ensure RedisSessionStore implements the SessionStore port
var _ repository.SessionStore = (*RedisSessionStore)(nil)
