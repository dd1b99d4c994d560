package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"campus-auth/internal/shared/ttl"
)

// Session store backends selectable via SESSION_STORE_BACKEND.
const (
	SessionStoreMongo = "mongodb"
	SessionStoreRedis = "redis"
)

// Config holds all configuration for the auth module.
type Config struct {
	// MongoDB Configuration
	MongoDBURI   string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"campus_auth_db"`

	// Redis Configuration (used when SESSION_STORE_BACKEND=redis)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// SessionStoreBackend selects the session persistence adapter.
	SessionStoreBackend string `env:"SESSION_STORE_BACKEND" envDefault:"mongodb"`

	// JWT Configuration. AccessTokenTTL belongs to the token service; the
	// refresh lifetime is a TTL spec string ("<digits><unit>") resolved by the
	// shared ttl package when sessions are created.
	JWTSecretKey    string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"campus-auth-service"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL string        `env:"REFRESH_TOKEN_TTL" envDefault:"7d"`

	// Cookie Configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"campus_auth_token"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"` // Set to true in production
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"` // "Lax", "Strict", "None"
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("access_token_ttl must be positive")
	}
	if c.RefreshTokenTTL == "" {
		c.RefreshTokenTTL = "7d"
	}
	if _, err := ttl.ToMilliseconds(c.RefreshTokenTTL); err != nil {
		return errors.New("refresh_token_ttl is not a valid ttl spec: " + err.Error())
	}

	switch c.SessionStoreBackend {
	case SessionStoreMongo, SessionStoreRedis:
	default:
		return errors.New("session_store_backend must be one of 'mongodb' or 'redis'")
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		c.CookieSameSite = "Lax"
	case "strict":
		c.CookieSameSite = "Strict"
	case "none":
		c.CookieSameSite = "None"
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}

	return nil
}
