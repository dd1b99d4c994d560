package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"campus-auth/internal/auth/config"
	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/shared/eventbus"
	"campus-auth/internal/shared/ttl"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrTokenInvalid       = errors.New("token is invalid")
	// ErrInvalidSession covers a missing session, a subject mismatch, an expired
	// session, and a lost rotation race. The causes are deliberately not
	// distinguishable from the outside.
	ErrInvalidSession = errors.New("session is invalid")
)

// Password validation constants
const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, *TokenPair, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error)
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// RefreshRequest represents the token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthUsecase implements the session/token lifecycle logic.
type AuthUsecase struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	tokens   repository.TokenService
	hasher   repository.PasswordHasher
	events   eventbus.EventBusInterface
	config   *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase. The event bus may be nil.
func NewAuthUsecase(
	users repository.UserRepository,
	sessions repository.SessionStore,
	tokens repository.TokenService,
	hasher repository.PasswordHasher,
	events eventbus.EventBusInterface,
	cfg *config.Config,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		events:   events,
		config:   cfg,
	}
}

// refreshTTL returns the configured refresh lifetime spec, defaulting to 7 days.
func (uc *AuthUsecase) refreshTTL() string {
	if uc.config != nil && uc.config.RefreshTokenTTL != "" {
		return uc.config.RefreshTokenTTL
	}
	return "7d"
}

func (uc *AuthUsecase) publish(ctx context.Context, eventType string, data interface{}) {
	if uc.events == nil {
		return
	}
	uc.events.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventType, data, "auth"))
}

// validateEmail validates email format
func (uc *AuthUsecase) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

// validatePassword validates password length bounds
func (uc *AuthUsecase) validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// issueSession signs a token pair, resolves the refresh expiration, and
// persists a fresh session record. Persistence failure surfaces to the caller;
// there is no partial success.
func (uc *AuthUsecase) issueSession(ctx context.Context, userID, email, ip, userAgent string) (*TokenPair, error) {
	accessToken, err := uc.tokens.SignAccessToken(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := uc.tokens.SignRefreshToken(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	expiration, err := ttl.CalculateExpiration(uc.refreshTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refresh ttl: %w", err)
	}

	session := &model.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiration.ExpiresAt,
		IPAddress:    ip,
		UserAgent:    userAgent,
		CreatedAt:    time.Now(),
	}
	if err := uc.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	uc.publish(ctx, eventbus.EventTypeSessionCreated, session)

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates a new active user account and opens its first session
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, *TokenPair, error) {
	if err := uc.validateEmail(req.Email); err != nil {
		return nil, nil, err
	}
	if err := uc.validatePassword(req.Password); err != nil {
		return nil, nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.ValidateFields(); err != nil {
		return nil, nil, err
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := uc.issueSession(ctx, user.ID, user.Email, "", "")
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	return user, pair, nil
}

// Login authenticates credentials and issues a fresh token pair. All existing
// sessions for the user are revoked first: one active session per user.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	if err := uc.validateEmail(req.Email); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same error as a wrong password so callers cannot enumerate accounts.
			uc.publish(ctx, eventbus.EventTypeLoginFailed, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !uc.hasher.Compare(req.Password, user.PasswordHash) {
		uc.publish(ctx, eventbus.EventTypeLoginFailed, email)
		return nil, ErrInvalidCredentials
	}

	if err := uc.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke prior sessions: %w", err)
	}

	pair, err := uc.issueSession(ctx, user.ID, user.Email, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, eventbus.EventTypeUserAuthenticated, user.ID)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token's session is revoked and
// a new session takes its place. Validation happens strictly before revocation,
// so a malformed or mismatched request cannot invalidate a legitimate session.
func (uc *AuthUsecase) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := uc.tokens.VerifyRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	session, err := uc.sessions.GetSessionByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session.UserID != claims.UserID || session.IsRevoked() || session.IsExpired(time.Now()) {
		return nil, ErrInvalidSession
	}

	// Rotation point: first caller wins, a concurrent replay of the same token
	// observes ErrSessionRevoked from the store and fails below.
	if err := uc.sessions.RevokeByID(ctx, session.ID); err != nil {
		if errors.Is(err, repository.ErrSessionRevoked) || errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	uc.publish(ctx, eventbus.EventTypeSessionRevoked, session.ID)

	return uc.issueSession(ctx, claims.UserID, claims.Email, req.IPAddress, req.UserAgent)
}

// Logout validates the access token and revokes every session of its subject
func (uc *AuthUsecase) Logout(ctx context.Context, accessToken string) error {
	claims, err := uc.tokens.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return ErrTokenInvalid
	}

	if err := uc.sessions.RevokeAllForUser(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	uc.publish(ctx, eventbus.EventTypeUserLoggedOut, claims.UserID)
	return nil
}

// ValidateToken validates an access token string
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokens.ValidateAccessToken(ctx, tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetUserFromToken validates a token and fetches the associated user
func (uc *AuthUsecase) GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := uc.tokens.ValidateAccessToken(ctx, tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := uc.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
