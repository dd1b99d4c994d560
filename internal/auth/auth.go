package auth

import (
	"fmt"

	authhttp "campus-auth/internal/auth/adapter/http"
	"campus-auth/internal/auth/adapter/persistence/mongodb"
	redisstore "campus-auth/internal/auth/adapter/persistence/redis"
	"campus-auth/internal/auth/adapter/security"
	"campus-auth/internal/auth/config"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/auth/usecase"
	"campus-auth/internal/shared/eventbus"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	tokenSvc repository.TokenService
	usecase  usecase.AuthUsecaseInterface
	handler  *authhttp.AuthHTTPHandler
	config   *config.Config
}

// Options carries the external resources the module wires against. The Redis
// client is required only when the configured session backend is redis. The
// event bus and logger may be nil.
type Options struct {
	RedisClient *redis.Client
	EventBus    eventbus.EventBusInterface
	Logger      *zap.Logger
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(db *mongo.Database, cfg *config.Config, opts Options) (*AuthModule, error) {
	userRepo, err := mongodb.NewMongoUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}

	var sessions repository.SessionStore
	switch cfg.SessionStoreBackend {
	case config.SessionStoreRedis:
		if opts.RedisClient == nil {
			return nil, fmt.Errorf("session backend is redis but no redis client was provided")
		}
		sessions = redisstore.NewRedisSessionStore(opts.RedisClient, "", opts.Logger)
	default:
		sessions, err = mongodb.NewMongoSessionStore(db, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	hasher := security.NewBcryptHasher(0)

	authUsecase := usecase.NewAuthUsecase(userRepo, sessions, tokenSvc, hasher, opts.EventBus, cfg)

	handler := authhttp.NewAuthHTTPHandler(authUsecase, cfg)

	return &AuthModule{
		users:    userRepo,
		sessions: sessions,
		tokenSvc: tokenSvc,
		usecase:  authUsecase,
		handler:  handler,
		config:   cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	middleware := am.GetMiddleware()
	am.handler.SetupAuthRoutesWithMiddleware(router, middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(am.usecase, am.config.CookieName)
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	return nil
}
