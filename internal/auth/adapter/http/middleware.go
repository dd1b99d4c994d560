package http

import (
	"strings"
	"time"

	"campus-auth/internal/auth/usecase"
	"campus-auth/internal/shared/contextkeys"
	"campus-auth/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.AuthUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// CORS middleware with security headers
func (m *AuthMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:3001",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter creates rate limiting middleware for auth endpoints
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               10,              // 10 requests
		Expiration:        1 * time.Minute, // per minute
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// Protect returns middleware that requires a valid access token
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractToken(c, m.cookieName)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// OptionalAuth middleware that validates authentication only when a token is present
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractToken(c, m.cookieName)
		if err != nil || token == "" {
			return c.Next()
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			// Invalid token, but continue without authentication
			return c.Next()
		}

		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// extractToken extracts the token from Authorization header or cookie
func extractToken(c *fiber.Ctx, cookieName string) (string, error) {
	// Try Authorization header first
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer "), nil
		}
	}

	// Try cookie
	token := c.Cookies(cookieName)
	if token != "" {
		return token, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "No authentication token found")
}
