package testutil

import (
	"time"

	"campus-auth/internal/auth/domain/model"

	"golang.org/x/crypto/bcrypt"
)

// UserFixture provides test data for User model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// ValidUser returns an active user for testing
func (f *UserFixture) ValidUser() *model.User {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return &model.User{
		ID:           "test-user-id-123",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// UserWithEmail returns an active user with specific email
func (f *UserFixture) UserWithEmail(email string) *model.User {
	user := f.ValidUser()
	user.ID = "user-" + email
	user.Email = email
	return user
}

// UserWithPassword returns an active user whose hash matches the given password
func (f *UserFixture) UserWithPassword(email, password string) *model.User {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := f.UserWithEmail(email)
	user.PasswordHash = string(hashedPassword)
	return user
}

// InactiveUser returns a deactivated account
func (f *UserFixture) InactiveUser() *model.User {
	user := f.ValidUser()
	user.ID = "inactive-user-id"
	user.Email = "inactive@example.com"
	user.IsActive = false
	return user
}

// SessionFixture provides test data for Session model
type SessionFixture struct{}

// NewSessionFixture creates a new SessionFixture instance
func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

// ValidSession returns an active session for testing
func (f *SessionFixture) ValidSession() *model.Session {
	return &model.Session{
		ID:           "test-session-id-123",
		UserID:       "test-user-id-123",
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		ExpiresAt:    time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:    time.Now(),
	}
}

// SessionForUser returns an active session for specific user
func (f *SessionFixture) SessionForUser(userID string) *model.Session {
	session := f.ValidSession()
	session.ID = "session-for-" + userID
	session.UserID = userID
	session.RefreshToken = "refresh-token-" + userID
	return session
}

// ExpiredSession returns a session whose lifetime has lapsed
func (f *SessionFixture) ExpiredSession() *model.Session {
	session := f.ValidSession()
	session.ID = "expired-session-id"
	session.ExpiresAt = time.Now().Add(-1 * time.Hour)
	session.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
	return session
}

// RevokedSession returns a session that lost a rotation or was logged out
func (f *SessionFixture) RevokedSession() *model.Session {
	session := f.ValidSession()
	session.ID = "revoked-session-id"
	revokedAt := time.Now().Add(-10 * time.Minute)
	session.RevokedAt = &revokedAt
	return session
}

// TestData provides all fixtures
type TestData struct {
	Users    *UserFixture
	Sessions *SessionFixture
}

// NewTestData creates a new TestData instance with all fixtures
func NewTestData() *TestData {
	return &TestData{
		Users:    NewUserFixture(),
		Sessions: NewSessionFixture(),
	}
}

// Common test emails for validation testing
var (
	ValidEmails = []string{
		"test@example.com",
		"user.name@domain.co.uk",
		"user+tag@example.org",
		"firstname.lastname@company.com",
	}

	InvalidEmails = []string{
		"",
		"invalid-email",
		"@example.com",
		"test@",
		"test.example.com",
		"test space@example.com",
	}

	ValidPasswords = []string{
		"password123",
		"StrongP@ssw0rd",
		"MySecurePassword2024!",
		"12345678", // Minimum length
	}

	InvalidPasswords = []string{
		"",
		"123",
		"1234567", // One short of the minimum
	}
)
