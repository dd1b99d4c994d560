package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"campus-auth/internal/auth"
	"campus-auth/internal/auth/config"
	"campus-auth/internal/shared/eventbus"
	"campus-auth/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container represents a dependency injection container with proper lifecycle management
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	AuthModule *auth.AuthModule
	// External connections
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Configuration
	AuthConfig *config.Config
	// Observability
	Logger   logger.Logger
	EventBus eventbus.EventBusInterface
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
	}
}

// InitializeAuth wires the authentication module against the stored connections.
// The Redis client may be nil when the configured session backend is mongodb.
func (c *Container) InitializeAuth(mongoDB *mongo.Database, redisClient *redis.Client, authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.RedisClient = redisClient
	c.AuthConfig = authConfig

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}
	if c.EventBus == nil {
		c.EventBus = eventbus.NewEventBus(c.Logger)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		zapLogger = zap.NewNop()
	}

	authModule, err := auth.NewAuthModule(mongoDB, authConfig, auth.Options{
		RedisClient: redisClient,
		EventBus:    c.EventBus,
		Logger:      zapLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// HealthCheck pings the external connections the container holds
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup performs cleanup of registered services with proper shutdown order
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop auth module: %w", err))
		}
		c.AuthModule = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.Cleanup(ctx)
}
