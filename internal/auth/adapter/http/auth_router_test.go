package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authhttp "campus-auth/internal/auth/adapter/http"
	"campus-auth/internal/auth/config"
	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Mock usecase
type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*model.User, *usecase.TokenPair, error) {
	args := m.Called(ctx, req)
	var user *model.User
	var pair *usecase.TokenPair
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	if args.Get(1) != nil {
		pair = args.Get(1).(*usecase.TokenPair)
	}
	return user, pair, args.Error(2)
}

func (m *mockAuthUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TokenPair), args.Error(1)
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, req usecase.RefreshRequest) (*usecase.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TokenPair), args.Error(1)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *mockAuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

func (m *mockAuthUsecase) GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type AuthHTTPTestSuite struct {
	suite.Suite
	app         *fiber.App
	mockUsecase *mockAuthUsecase
}

func (suite *AuthHTTPTestSuite) SetupTest() {
	suite.mockUsecase = &mockAuthUsecase{}
	suite.app = fiber.New()

	cfg := &config.Config{
		CookieName:     "test_cookie",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		AccessTokenTTL: 15 * time.Minute,
	}
	handler := authhttp.NewAuthHTTPHandler(suite.mockUsecase, cfg)
	middleware := authhttp.NewAuthMiddleware(suite.mockUsecase, cfg.CookieName)

	handler.SetupAuthRoutesWithMiddleware(suite.app.Group("/auth"), middleware)
}

func (suite *AuthHTTPTestSuite) postJSON(path string, body interface{}, headers map[string]string) *http.Response {
	raw, err := json.Marshal(body)
	require.NoError(suite.T(), err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (suite *AuthHTTPTestSuite) TestRegister_Success() {
	user := &model.User{
		ID:        "user-123",
		Email:     "test@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	pair := &usecase.TokenPair{AccessToken: "access-123", RefreshToken: "refresh-123"}

	suite.mockUsecase.On("Register", mock.Anything, mock.MatchedBy(func(r usecase.RegisterRequest) bool {
		return r.Email == "test@example.com" && r.Password == "password123"
	})).Return(user, pair, nil)

	resp := suite.postJSON("/auth/register", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, nil)

	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "access-123", body["accessToken"])
}

func (suite *AuthHTTPTestSuite) TestRegister_EmailTaken() {
	suite.mockUsecase.On("Register", mock.Anything, mock.Anything).
		Return(nil, nil, usecase.ErrEmailTaken)

	resp := suite.postJSON("/auth/register", map[string]string{
		"email":    "taken@example.com",
		"password": "password123",
	}, nil)

	assert.Equal(suite.T(), http.StatusConflict, resp.StatusCode)
}

func (suite *AuthHTTPTestSuite) TestLogin_Success_SetsCookie() {
	pair := &usecase.TokenPair{AccessToken: "access-123", RefreshToken: "refresh-123"}

	suite.mockUsecase.On("Login", mock.Anything, mock.MatchedBy(func(r usecase.LoginRequest) bool {
		return r.Email == "test@example.com" && r.Password == "password123"
	})).Return(pair, nil)

	resp := suite.postJSON("/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, nil)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var authCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "test_cookie" {
			authCookie = cookie
		}
	}
	require.NotNil(suite.T(), authCookie)
	assert.Equal(suite.T(), "access-123", authCookie.Value)
	assert.True(suite.T(), authCookie.HttpOnly)

	// The cookie lifetime follows the configured access token TTL.
	assert.Equal(suite.T(), int((15 * time.Minute).Seconds()), authCookie.MaxAge)
	assert.WithinDuration(suite.T(), time.Now().Add(15*time.Minute), authCookie.Expires, time.Minute)
}

func (suite *AuthHTTPTestSuite) TestLogin_InvalidCredentials() {
	suite.mockUsecase.On("Login", mock.Anything, mock.Anything).
		Return(nil, usecase.ErrInvalidCredentials)

	resp := suite.postJSON("/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	}, nil)

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "Invalid email or password", body["error"])
}

func (suite *AuthHTTPTestSuite) TestLogin_InactiveAccount() {
	suite.mockUsecase.On("Login", mock.Anything, mock.Anything).
		Return(nil, usecase.ErrInactiveUser)

	resp := suite.postJSON("/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, nil)

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "Account is inactive", body["error"])
}

func (suite *AuthHTTPTestSuite) TestRefresh_Success() {
	pair := &usecase.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

	suite.mockUsecase.On("Refresh", mock.Anything, mock.MatchedBy(func(r usecase.RefreshRequest) bool {
		return r.RefreshToken == "old-refresh"
	})).Return(pair, nil)

	resp := suite.postJSON("/auth/refresh", map[string]string{
		"refreshToken": "old-refresh",
	}, nil)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "new-refresh", body["refreshToken"])
}

func (suite *AuthHTTPTestSuite) TestRefresh_MissingToken() {
	resp := suite.postJSON("/auth/refresh", map[string]string{}, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	suite.mockUsecase.AssertNotCalled(suite.T(), "Refresh", mock.Anything, mock.Anything)
}

func (suite *AuthHTTPTestSuite) TestRefresh_InvalidSession() {
	suite.mockUsecase.On("Refresh", mock.Anything, mock.Anything).
		Return(nil, usecase.ErrInvalidSession)

	resp := suite.postJSON("/auth/refresh", map[string]string{
		"refreshToken": "stale-refresh",
	}, nil)

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *AuthHTTPTestSuite) TestLogout_Success() {
	claims := &repository.Claims{UserID: "user-123", Email: "test@example.com"}
	suite.mockUsecase.On("ValidateToken", mock.Anything, "access-123").Return(claims, nil)
	suite.mockUsecase.On("Logout", mock.Anything, "access-123").Return(nil)

	resp := suite.postJSON("/auth/logout", map[string]string{}, map[string]string{
		"Authorization": "Bearer access-123",
	})

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	suite.mockUsecase.AssertCalled(suite.T(), "Logout", mock.Anything, "access-123")
}

func (suite *AuthHTTPTestSuite) TestLogout_WithoutToken() {
	resp := suite.postJSON("/auth/logout", map[string]string{}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	suite.mockUsecase.AssertNotCalled(suite.T(), "Logout", mock.Anything, mock.Anything)
}

func (suite *AuthHTTPTestSuite) TestGetCurrentUser() {
	claims := &repository.Claims{UserID: "user-123", Email: "test@example.com"}
	user := &model.User{ID: "user-123", Email: "test@example.com", IsActive: true}

	suite.mockUsecase.On("ValidateToken", mock.Anything, "access-123").Return(claims, nil)
	suite.mockUsecase.On("GetUserFromToken", mock.Anything, "access-123").Return(user, nil)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer access-123")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "test@example.com", body["email"])
}

func (suite *AuthHTTPTestSuite) TestProtectedRoute_InvalidToken() {
	suite.mockUsecase.On("ValidateToken", mock.Anything, "garbage").
		Return(nil, usecase.ErrTokenInvalid)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHTTPTestSuite))
}
