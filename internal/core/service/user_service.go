package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/claritykit/claritykit-backend/internal/api/metrics"
	"github.com/claritykit/claritykit-backend/internal/core/domain"
	"github.com/claritykit/claritykit-backend/internal/core/ports"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
	"github.com/claritykit/claritykit-backend/internal/pkg/password"
)

// UserService implements account maintenance: OTP-based password reset,
// password updates and soft deletion.
type UserService struct {
	repo   ports.UserRepository
	mailer ports.Mailer
	cfg    config.AuthConfig
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, mailer ports.Mailer, cfg config.AuthConfig, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, mailer: mailer, cfg: cfg, log: log}
}

// ForgetPassword generates a fresh OTP with a new expiry, persists it, and
// dispatches the reset email. An unknown address is reported as not found
// before any mutation or dispatch happens.
func (s *UserService) ForgetPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp := domain.GenerateOTP()
	expiresAt := time.Now().UTC().Add(s.cfg.ResetOTPTTL())
	if _, err := s.repo.UpdateByEmail(ctx, email, ports.UserUpdate{
		OTP:          &otp,
		OTPExpiresAt: &expiresAt,
	}); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUpdateFailed
		}
		return err
	}

	s.mailer.SendPasswordReset(user.Email, user.FirstName, otp)
	metrics.PasswordResetsTotal.Inc()
	return nil
}

// UpdatePassword changes the password of the authenticated identity. The
// confirm field must match the new password.
func (s *UserService) UpdatePassword(ctx context.Context, email string, in ports.UpdatePasswordInput) error {
	return s.updatePassword(ctx, email, in, false)
}

// UpdatePasswordByOTP is the reset-flow variant: besides changing the
// password it marks the account verified, since holding the OTP proves
// control of the address.
func (s *UserService) UpdatePasswordByOTP(ctx context.Context, email string, in ports.UpdatePasswordInput) error {
	return s.updatePassword(ctx, email, in, true)
}

func (s *UserService) updatePassword(ctx context.Context, email string, in ports.UpdatePasswordInput, markVerified bool) error {
	if in.ConfirmPassword != in.NewPassword {
		return domain.ErrPasswordMismatch
	}

	hash, err := password.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	update := ports.UserUpdate{PasswordHash: &hash}
	if markVerified {
		verified := true
		update.IsVerified = &verified
	}

	if _, err := s.repo.UpdateByEmail(ctx, domain.NormalizeEmail(email), update); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUpdateFailed
		}
		return err
	}
	return nil
}

// UserInfo returns the account behind the authenticated identity.
func (s *UserService) UserInfo(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
}

// DeleteAccount soft-deletes: the record keeps existing with deleted_at set
// and the verified flag cleared.
func (s *UserService) DeleteAccount(ctx context.Context, email string) error {
	now := time.Now().UTC()
	unverified := false
	_, err := s.repo.UpdateByEmail(ctx, domain.NormalizeEmail(email), ports.UserUpdate{
		DeletedAt:  &now,
		IsVerified: &unverified,
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUpdateFailed
	}
	return err
}
