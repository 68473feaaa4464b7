package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/claritykit/claritykit-backend/internal/api/metrics"
	"github.com/claritykit/claritykit-backend/internal/core/domain"
	"github.com/claritykit/claritykit-backend/internal/core/ports"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
	"github.com/claritykit/claritykit-backend/internal/pkg/password"
	"github.com/claritykit/claritykit-backend/internal/pkg/token"
)

// AttemptThrottle abstracts the failed-attempt limiter (Redis). A throttle
// backend failure must never block authentication, so callers fail open.
type AttemptThrottle interface {
	Allow(ctx context.Context, scope, email string) (bool, error)
}

const tokenTypeBearer = "bearer"

// AuthService implements signup, login, account verification and token
// refresh. It is stateless between calls; all durable state lives in the
// user repository.
type AuthService struct {
	repo     ports.UserRepository
	codec    *token.Codec
	mailer   ports.Mailer
	throttle AttemptThrottle
	cfg      config.AuthConfig
	baseURL  string
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	codec *token.Codec,
	mailer ports.Mailer,
	throttle AttemptThrottle,
	cfg config.AuthConfig,
	baseURL string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		codec:    codec,
		mailer:   mailer,
		throttle: throttle,
		cfg:      cfg,
		baseURL:  baseURL,
		log:      log,
	}
}

// Signup registers a new account, leaves it unverified, and dispatches a
// verification email carrying a short-lived signed link.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) error {
	email := domain.NormalizeEmail(in.Email)

	// Existence check is a plain lookup: soft-deleted accounts still count
	// as taken.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		Profile:      in.Profile,
		IsVerified:   false,
		OTP:          domain.GenerateOTP(),
		OTPExpiresAt: now.Add(s.cfg.VerifyTokenTTL()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		}
		return err
	}

	s.sendVerificationMail(user)
	metrics.SignupsTotal.WithLabelValues("created").Inc()
	return nil
}

// AccountVerification consumes an emailed verification link token and marks
// the account verified. The embedded expiry is checked explicitly against
// the clock, independent of codec-level validation.
func (s *AuthService) AccountVerification(ctx context.Context, tokenStr string) (*ports.Credentials, error) {
	claims, err := s.codec.Decode(tokenStr)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("link", "invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		metrics.VerificationsTotal.WithLabelValues("link", "invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.VerificationsTotal.WithLabelValues("link", "invalid").Inc()
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if user.IsVerified {
		metrics.VerificationsTotal.WithLabelValues("link", "already_verified").Inc()
		return nil, domain.ErrAlreadyVerified
	}

	if exp, ok := token.ExpiresAt(claims); !ok || !exp.After(time.Now().UTC()) {
		metrics.VerificationsTotal.WithLabelValues("link", "expired").Inc()
		return nil, domain.ErrLinkExpired
	}

	if err := s.markVerified(ctx, user.Email); err != nil {
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues("link", "verified").Inc()
	return s.issueCredentials(user.Email)
}

// Login authenticates an email/password pair and issues an access token.
// Verification state is not required to log in.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*ports.Credentials, error) {
	email = domain.NormalizeEmail(email)

	if err := s.enforceThrottle(ctx, "login", email); err != nil {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrUnknownAccount
		}
		return nil, err
	}

	if !password.Verify(pass, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issueCredentials(user.Email)
}

// VerifyAccountRequest re-authenticates credentials and re-sends the
// verification email when the account is still unverified. The response is
// identical either way so it never reveals verification state.
func (s *AuthService) VerifyAccountRequest(ctx context.Context, email, pass string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnknownAccount
		}
		return err
	}

	if !password.Verify(pass, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		s.sendVerificationMail(user)
	}
	return nil
}

// VerifyOTP checks an emailed code against the stored one and marks the
// account verified on match. Expiry is checked before the value so an
// expired code is always reported as expired, never merely invalid.
func (s *AuthService) VerifyOTP(ctx context.Context, email string, otp int) (*ports.Credentials, error) {
	email = domain.NormalizeEmail(email)

	if err := s.enforceThrottle(ctx, "otp", email); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.VerificationsTotal.WithLabelValues("otp", "invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.OTPExpired(time.Now().UTC()) {
		metrics.VerificationsTotal.WithLabelValues("otp", "expired").Inc()
		return nil, domain.ErrOTPExpired
	}

	if user.OTP != otp {
		metrics.VerificationsTotal.WithLabelValues("otp", "invalid").Inc()
		return nil, domain.ErrOTPInvalid
	}

	if err := s.markVerified(ctx, user.Email); err != nil {
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues("otp", "verified").Inc()
	return s.issueCredentials(user.Email)
}

// RefreshToken exchanges a still-valid access token for a fresh one with the
// standard time-to-live.
func (s *AuthService) RefreshToken(ctx context.Context, tokenStr string) (*ports.Credentials, error) {
	claims, err := s.codec.Decode(tokenStr)
	if err != nil {
		return nil, domain.ErrUnauthorizedToken
	}

	if exp, ok := token.ExpiresAt(claims); !ok || !exp.After(time.Now().UTC()) {
		return nil, domain.ErrUnauthorizedToken
	}

	sub, ok := token.Subject(claims)
	if !ok {
		return nil, domain.ErrUnauthorizedToken
	}

	return s.issueCredentials(sub)
}

func (s *AuthService) issueCredentials(email string) (*ports.Credentials, error) {
	signed, err := s.codec.Issue(jwt.MapClaims{"sub": email}, s.cfg.AccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &ports.Credentials{AccessToken: signed, TokenType: tokenTypeBearer}, nil
}

func (s *AuthService) markVerified(ctx context.Context, email string) error {
	verified := true
	_, err := s.repo.UpdateByEmail(ctx, email, ports.UserUpdate{IsVerified: &verified})
	return err
}

// sendVerificationMail signs a short-lived {email, otp} token and hands the
// resulting link to the mailer. Failures are logged only; notification
// problems never fail the parent operation.
func (s *AuthService) sendVerificationMail(user *domain.User) {
	signed, err := s.codec.Issue(
		jwt.MapClaims{"email": user.Email, "otp": user.OTP},
		s.cfg.VerifyTokenTTL(),
	)
	if err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Msg("verification token issue failed")
		return
	}
	link := fmt.Sprintf("%s/auth/verify-account/%s", s.baseURL, signed)
	s.mailer.SendAccountVerification(user.Email, user.FirstName, link)
}

func (s *AuthService) enforceThrottle(ctx context.Context, scope, email string) error {
	if s.throttle == nil {
		return nil
	}
	allowed, err := s.throttle.Allow(ctx, scope, email)
	if err != nil {
		s.log.Warn().Err(err).Str("scope", scope).Msg("throttle check failed, allowing")
		return nil
	}
	if !allowed {
		return domain.ErrTooManyAttempts
	}
	return nil
}
