package ports

import (
	"context"

	"github.com/claritykit/claritykit-backend/internal/core/domain"
)

// UpdatePasswordInput carries a password change request. The confirm field
// must equal the new password before anything is persisted.
type UpdatePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
	OTP             int
}

type UserService interface {
	ForgetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email string, in UpdatePasswordInput) error
	UpdatePasswordByOTP(ctx context.Context, email string, in UpdatePasswordInput) error
	UserInfo(ctx context.Context, email string) (*domain.User, error)
	DeleteAccount(ctx context.Context, email string) error
}
