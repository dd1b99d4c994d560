package mongodb

import (
	"context"
	"fmt"
	"time"

	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoSessionStore implements the SessionStore interface using MongoDB.
// Revocation is a single conditional update on the revoked_at field, which
// gives the first-caller-wins behavior the refresh rotation relies on.
type MongoSessionStore struct {
	sessionsCollection *mongo.Collection
	logger             *zap.Logger
}

// NewMongoSessionStore creates a new MongoDB session store and ensures its indexes
func NewMongoSessionStore(db *mongo.Database, logger *zap.Logger) (*MongoSessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &MongoSessionStore{
		sessionsCollection: db.Collection("sessions"),
		logger:             logger,
	}

	ctx := context.Background()

	// Refresh token index for rotation lookups (unique per session)
	refreshIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "refresh_token", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := store.sessionsCollection.Indexes().CreateOne(ctx, refreshIndex); err != nil {
		return nil, err
	}

	// User index for revoke-all
	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}
	if _, err := store.sessionsCollection.Indexes().CreateOne(ctx, userIndex); err != nil {
		return nil, err
	}

	// TTL index reaps expired rows lazily; expiry is still enforced at
	// read-time by the use case, the sweep is only hygiene.
	expiresAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := store.sessionsCollection.Indexes().CreateOne(ctx, expiresAtIndex); err != nil {
		return nil, err
	}

	return store, nil
}

// CreateSession persists a new session record
func (s *MongoSessionStore) CreateSession(ctx context.Context, session *model.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := s.sessionsCollection.InsertOne(ctx, session)
	if err != nil {
		return err
	}

	s.logger.Debug("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Time("expires_at", session.ExpiresAt))
	return nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token value
func (s *MongoSessionStore) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	if refreshToken == "" {
		return nil, repository.ErrSessionNotFound
	}

	var session model.Session
	err := s.sessionsCollection.FindOne(ctx, bson.M{"refresh_token": refreshToken}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// RevokeByID flips a session from active to revoked. The filter requires
// revoked_at to still be unset, so of two concurrent calls exactly one
// matches a document; the other gets ErrSessionRevoked.
func (s *MongoSessionStore) RevokeByID(ctx context.Context, id string) error {
	now := time.Now()
	result, err := s.sessionsCollection.UpdateOne(ctx,
		bson.M{"_id": id, "revoked_at": nil},
		bson.M{"$set": bson.M{"revoked_at": now}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return repository.ErrSessionRevoked
	}

	s.logger.Debug("session revoked", zap.String("session_id", id), zap.Time("revoked_at", now))
	return nil
}

// RevokeAllForUser revokes every active session of the given user. Revoking a
// user with no active sessions is a no-op, not an error.
func (s *MongoSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	now := time.Now()
	result, err := s.sessionsCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked_at": nil},
		bson.M{"$set": bson.M{"revoked_at": now}},
	)
	if err != nil {
		return err
	}

	s.logger.Debug("user sessions revoked",
		zap.String("user_id", userID),
		zap.Int64("count", result.ModifiedCount))
	return nil
}

// Ensure MongoSessionStore implements the SessionStore port
var _ repository.SessionStore = (*MongoSessionStore)(nil)
