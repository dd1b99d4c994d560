package http

import (
	"errors"
	"time"

	"campus-auth/internal/auth/config"
	"campus-auth/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase        usecase.AuthUsecaseInterface
	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite string
	cookieTTL      time.Duration
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cfg *config.Config) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase:        uc,
		cookieName:     cfg.CookieName,
		cookiePath:     cfg.CookiePath,
		cookieDomain:   cfg.CookieDomain,
		cookieSecure:   cfg.CookieSecure,
		cookieHTTPOnly: cfg.CookieHTTPOnly,
		cookieSameSite: cfg.CookieSameSite,
		cookieTTL:      cfg.AccessTokenTTL,
	}
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	// Public routes (no authentication required)
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/refresh", h.RefreshToken)

	// Protected routes (authentication required)
	protected := router.Group("/", middleware.Protect())
	protected.Post("/logout", h.Logout)
	protected.Get("/me", h.GetCurrentUser)
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, pair, err := h.usecase.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.setCookie(c, pair.AccessToken)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.IPAddress = c.IP()
	req.UserAgent = c.Get(fiber.HeaderUserAgent)

	pair, err := h.usecase.Login(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		case errors.Is(err, usecase.ErrInactiveUser):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Account is inactive",
			})
		case errors.Is(err, usecase.ErrInvalidEmailFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email format",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Login failed",
			})
		}
	}

	h.setCookie(c, pair.AccessToken)

	return c.JSON(pair)
}

// RefreshToken handles refresh token rotation
func (h *AuthHTTPHandler) RefreshToken(c *fiber.Ctx) error {
	var req usecase.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Refresh token required",
		})
	}
	req.IPAddress = c.IP()
	req.UserAgent = c.Get(fiber.HeaderUserAgent)

	pair, err := h.usecase.Refresh(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenInvalid), errors.Is(err, usecase.ErrInvalidSession):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired refresh token",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Token refresh failed",
			})
		}
	}

	h.setCookie(c, pair.AccessToken)

	return c.JSON(pair)
}

// Logout handles user logout
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	token, err := extractToken(c, h.cookieName)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if err := h.usecase.Logout(c.Context(), token); err != nil {
		if errors.Is(err, usecase.ErrTokenInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Logout failed",
		})
	}

	h.clearCookie(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	token, err := extractToken(c, h.cookieName)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	user, err := h.usecase.GetUserFromToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}

	return c.JSON(user)
}

// Helper methods

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		// The cookie carries the access token, so it lives exactly as long.
		MaxAge:  int(h.cookieTTL.Seconds()),
		Expires: time.Now().Add(h.cookieTTL),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
