package ports

import (
	"context"
	"time"

	"github.com/claritykit/claritykit-backend/internal/core/domain"
)

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	PasswordHash *string
	IsVerified   *bool
	OTP          *int
	OTPExpiresAt *time.Time
	DeletedAt    *time.Time
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateByEmail applies the non-nil fields of update to the account with
	// the given email and returns the updated record. A miss (no matching
	// account) is reported as domain.ErrUserNotFound.
	UpdateByEmail(ctx context.Context, email string, update UserUpdate) (*domain.User, error)
}
