package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-auth/internal/auth/config"
	"campus-auth/internal/di"
	apperrors "campus-auth/internal/shared/errors"
	"campus-auth/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer()
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Error("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	authConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load auth configuration: %v", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(authConfig.MongoDBURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Failed to disconnect MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	appLogger.Info("MongoDB connection established successfully")

	mongoDB := mongoClient.Database(authConfig.DatabaseName)

	// Redis is only dialed when it backs the session store.
	var redisClient *redis.Client
	if authConfig.SessionStoreBackend == config.SessionStoreRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     authConfig.RedisAddr,
			Password: authConfig.RedisPassword,
			DB:       authConfig.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				appLogger.Error("Failed to close Redis client: %v", err)
			}
		}()
		appLogger.Info("Redis connection established successfully")
	}

	if err := container.InitializeAuth(mongoDB, redisClient, authConfig); err != nil {
		log.Fatalf("Failed to initialize Auth module: %v", err)
	}
	appLogger.Info("Auth module initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Campus Auth API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.Error("HTTP Error: %v", err)

			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.HTTPCode).JSON(fiber.Map{
					"error": appErr.Message,
					"type":  appErr.Type,
				})
			}

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Error("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Campus Auth API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	authModule := container.GetAuthModule()
	if authModule != nil {
		authModule.RegisterRoutes(app.Group("/api/v1/auth"))
		appLogger.Info("Auth routes registered")
	}

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Info("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Info("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown: %v", err)
		}

		appLogger.Info("HTTP server stopped")
	}
}
