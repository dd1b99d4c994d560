package mongodb

import (
	"context"
	"fmt"
	"time"

	"campus-auth/internal/auth/domain/model"
	"campus-auth/internal/auth/domain/repository"
	"campus-auth/internal/auth/usecase"
	apperrors "campus-auth/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface using MongoDB
type MongoUserRepository struct {
	usersCollection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository and ensures its indexes
func NewMongoUserRepository(db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{
		usersCollection: db.Collection("users"),
	}

	ctx := context.Background()

	// Email index for users (unique)
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, err
	}

	// ID index for UUID lookups
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateUser creates a new user in the database
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	doc := bson.M{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_active":     user.IsActive,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	if user.FirstName != "" {
		doc["firstName"] = user.FirstName
	}
	if user.LastName != "" {
		doc["lastName"] = user.LastName
	}

	_, err := r.usersCollection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailTaken
		}
		return apperrors.NewInfrastructureError("failed to insert user").
			WithCause(err).WithComponent("mongodb.user_repository")
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, apperrors.NewInfrastructureError("failed to look up user by email").
			WithCause(err).WithComponent("mongodb.user_repository")
	}
	return &user, nil
}

// GetUserByID retrieves a user by its UUID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, apperrors.NewInfrastructureError("failed to look up user by id").
			WithCause(err).WithComponent("mongodb.user_repository")
	}
	return &user, nil
}

// Ensure MongoUserRepository implements the UserRepository port
var _ repository.UserRepository = (*MongoUserRepository)(nil)
