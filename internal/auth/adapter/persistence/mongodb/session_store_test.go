package mongodb_test

import (
	"context"
	"testing"
	"time"

	"campus-auth/internal/auth/adapter/persistence/mongodb"
	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/auth/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStoreTestSuite struct {
	suite.Suite
	client   *mongo.Client
	database *mongo.Database
	users    repository.UserRepository
	sessions repository.SessionStore
}

func (suite *MongoStoreTestSuite) SetupSuite() {
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}

	suite.client = client
	suite.database = client.Database("campus_auth_test_db")

	users, err := mongodb.NewMongoUserRepository(suite.database)
	require.NoError(suite.T(), err)
	suite.users = users

	sessions, err := mongodb.NewMongoSessionStore(suite.database, nil)
	require.NoError(suite.T(), err)
	suite.sessions = sessions
}

func (suite *MongoStoreTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.database.Drop(context.Background())
		suite.client.Disconnect(context.Background())
	}
}

func (suite *MongoStoreTestSuite) newSession(userID string) *model.Session {
	return &model.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}
}

func (suite *MongoStoreTestSuite) TestCreateUser_NilUser() {
	err := suite.users.CreateUser(context.Background(), nil)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "user cannot be nil")
}

func (suite *MongoStoreTestSuite) TestGetUserByEmail_Missing() {
	_, err := suite.users.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(suite.T(), err, usecase.ErrUserNotFound)
}

func (suite *MongoStoreTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        "dup@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(suite.T(), suite.users.CreateUser(ctx, user))

	dup := &model.User{
		ID:           uuid.New().String(),
		Email:        "dup@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	err := suite.users.CreateUser(ctx, dup)
	assert.ErrorIs(suite.T(), err, usecase.ErrEmailTaken)
}

func (suite *MongoStoreTestSuite) TestSession_CreateGetRevoke() {
	ctx := context.Background()
	sess := suite.newSession("user-lifecycle")

	require.NoError(suite.T(), suite.sessions.CreateSession(ctx, sess))

	got, err := suite.sessions.GetSessionByRefreshToken(ctx, sess.RefreshToken)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), sess.ID, got.ID)
	assert.False(suite.T(), got.IsRevoked())

	require.NoError(suite.T(), suite.sessions.RevokeByID(ctx, sess.ID))

	got, err = suite.sessions.GetSessionByRefreshToken(ctx, sess.RefreshToken)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), got.IsRevoked())
}

func (suite *MongoStoreTestSuite) TestRevokeByID_SecondCallLoses() {
	ctx := context.Background()
	sess := suite.newSession("user-race")
	require.NoError(suite.T(), suite.sessions.CreateSession(ctx, sess))

	require.NoError(suite.T(), suite.sessions.RevokeByID(ctx, sess.ID))
	err := suite.sessions.RevokeByID(ctx, sess.ID)
	assert.ErrorIs(suite.T(), err, repository.ErrSessionRevoked)
}

func (suite *MongoStoreTestSuite) TestRevokeAllForUser() {
	ctx := context.Background()
	s1 := suite.newSession("user-all")
	s2 := suite.newSession("user-all")
	other := suite.newSession("user-other")
	require.NoError(suite.T(), suite.sessions.CreateSession(ctx, s1))
	require.NoError(suite.T(), suite.sessions.CreateSession(ctx, s2))
	require.NoError(suite.T(), suite.sessions.CreateSession(ctx, other))

	require.NoError(suite.T(), suite.sessions.RevokeAllForUser(ctx, "user-all"))

	got, err := suite.sessions.GetSessionByRefreshToken(ctx, s1.RefreshToken)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), got.IsRevoked())

	got, err = suite.sessions.GetSessionByRefreshToken(ctx, other.RefreshToken)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), got.IsRevoked())

	// Revoking again with nothing active is a no-op.
	require.NoError(suite.T(), suite.sessions.RevokeAllForUser(ctx, "user-all"))
}

func TestMongoStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MongoStoreTestSuite))
}
