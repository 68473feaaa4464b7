package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/claritykit/claritykit-backend/internal/core/domain"
	"github.com/claritykit/claritykit-backend/internal/core/ports"
)

const usersCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID           string     `bson:"_id"`
	FirstName    string     `bson:"first_name"`
	LastName     string     `bson:"last_name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Profile      string     `bson:"profile,omitempty"`
	IsAdmin      bool       `bson:"is_admin"`
	IsVerified   bool       `bson:"is_verified"`
	OTP          int        `bson:"otp"`
	OTPExpiresAt time.Time  `bson:"otp_expiration_time"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	DeletedAt    *time.Time `bson:"deleted_at,omitempty"`
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(&mu), nil
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		ID:           uuid.NewString(),
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Profile:      user.Profile,
		IsAdmin:      user.IsAdmin,
		IsVerified:   user.IsVerified,
		OTP:          user.OTP,
		OTPExpiresAt: user.OTPExpiresAt.UTC(),
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return toDomain(&doc), nil
}

// UpdateByEmail applies the non-nil fields of update as a single $set and
// returns the updated record. A miss surfaces as ErrUserNotFound.
func (r *MongoUserRepository) UpdateByEmail(ctx context.Context, email string, update ports.UserUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}
	if update.IsVerified != nil {
		set["is_verified"] = *update.IsVerified
	}
	if update.OTP != nil {
		set["otp"] = *update.OTP
	}
	if update.OTPExpiresAt != nil {
		set["otp_expiration_time"] = update.OTPExpiresAt.UTC()
	}
	if update.DeletedAt != nil {
		set["deleted_at"] = update.DeletedAt.UTC()
	}

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return toDomain(&mu), nil
}

func toDomain(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:           mu.ID,
		FirstName:    mu.FirstName,
		LastName:     mu.LastName,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Profile:      mu.Profile,
		IsAdmin:      mu.IsAdmin,
		IsVerified:   mu.IsVerified,
		OTP:          mu.OTP,
		OTPExpiresAt: mu.OTPExpiresAt,
		CreatedAt:    mu.CreatedAt,
		UpdatedAt:    mu.UpdatedAt,
		DeletedAt:    mu.DeletedAt,
	}
}
