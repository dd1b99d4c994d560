package security_test

import (
	"context"
	"testing"
	"time"

	"campus-auth/internal/auth/adapter/security"
	"campus-auth/internal/auth/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	config  *config.Config
	service *security.JWTokenService
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = &config.Config{
		JWTSecretKey:    "test-secret-key-32-characters-long-12345",
		JWTIssuer:       "test-issuer",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: "7d",
	}

	service, err := security.NewJWTokenService(suite.config)
	require.NoError(suite.T(), err)
	suite.service = service
}

func (suite *JWTTestSuite) TestNewJWTokenService_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{
			name: "empty secret key",
			modifyConfig: func(cfg *config.Config) {
				cfg.JWTSecretKey = ""
			},
			expectedErr: "jwt secret key cannot be empty",
		},
		{
			name: "empty issuer",
			modifyConfig: func(cfg *config.Config) {
				cfg.JWTIssuer = ""
			},
			expectedErr: "jwt issuer cannot be empty",
		},
		{
			name: "zero access TTL",
			modifyConfig: func(cfg *config.Config) {
				cfg.AccessTokenTTL = 0
			},
			expectedErr: "jwt access token TTL must be positive",
		},
		{
			name: "malformed refresh TTL",
			modifyConfig: func(cfg *config.Config) {
				cfg.RefreshTokenTTL = "soon"
			},
			expectedErr: "invalid ttl format",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config
			tc.modifyConfig(&cfg)

			service, err := security.NewJWTokenService(&cfg)
			assert.Nil(suite.T(), service)
			require.Error(suite.T(), err)
			assert.Contains(suite.T(), err.Error(), tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestAccessToken_SignAndValidate() {
	ctx := context.Background()

	token, err := suite.service.SignAccessToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), token)

	claims, err := suite.service.ValidateAccessToken(ctx, token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "user-1", claims.UserID)
	assert.Equal(suite.T(), "user@example.com", claims.Email)
	assert.Equal(suite.T(), "test-issuer", claims.Issuer)
}

func (suite *JWTTestSuite) TestRefreshToken_SignAndVerify() {
	ctx := context.Background()

	token, err := suite.service.SignRefreshToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)

	claims, err := suite.service.VerifyRefreshToken(ctx, token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "user-1", claims.UserID)

	// The refresh expiry must follow the configured "7d" spec, not the access TTL.
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(suite.T(), remaining, 6*24*time.Hour)
	assert.LessOrEqual(suite.T(), remaining, 7*24*time.Hour)
}

func (suite *JWTTestSuite) TestTokenKinds_AreNotInterchangeable() {
	ctx := context.Background()

	access, err := suite.service.SignAccessToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)
	refresh, err := suite.service.SignRefreshToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)

	_, err = suite.service.VerifyRefreshToken(ctx, access)
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)

	_, err = suite.service.ValidateAccessToken(ctx, refresh)
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)
}

func (suite *JWTTestSuite) TestVerifyRefreshToken_Tampered() {
	ctx := context.Background()

	token, err := suite.service.SignRefreshToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)

	tampered := token[:len(token)-2] + "xx"
	_, err = suite.service.VerifyRefreshToken(ctx, tampered)
	assert.Error(suite.T(), err)
}

func (suite *JWTTestSuite) TestVerifyRefreshToken_WrongKey() {
	ctx := context.Background()

	otherCfg := *suite.config
	otherCfg.JWTSecretKey = "another-secret-key-32-characters-long-00"
	other, err := security.NewJWTokenService(&otherCfg)
	require.NoError(suite.T(), err)

	token, err := other.SignRefreshToken(ctx, "user-1", "user@example.com")
	require.NoError(suite.T(), err)

	_, err = suite.service.VerifyRefreshToken(ctx, token)
	assert.Error(suite.T(), err)
}

func (suite *JWTTestSuite) TestValidateAccessToken_EmptyAndGarbage() {
	ctx := context.Background()

	_, err := suite.service.ValidateAccessToken(ctx, "")
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)

	_, err = suite.service.ValidateAccessToken(ctx, "not.a.jwt")
	assert.Error(suite.T(), err)
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := security.NewBcryptHasher(0)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, hasher.Compare("correct horse battery staple", hash))
	assert.False(t, hasher.Compare("wrong password", hash))
	assert.False(t, hasher.Compare("correct horse battery staple", "not-a-bcrypt-hash"))
}
