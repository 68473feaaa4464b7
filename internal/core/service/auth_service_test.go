package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/claritykit/claritykit-backend/internal/core/domain"
	"github.com/claritykit/claritykit-backend/internal/core/ports"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
	"github.com/claritykit/claritykit-backend/internal/pkg/password"
	"github.com/claritykit/claritykit-backend/internal/pkg/token"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = user.Email
	}
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpdateByEmail(_ context.Context, email string, update ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	if update.IsVerified != nil {
		u.IsVerified = *update.IsVerified
	}
	if update.OTP != nil {
		u.OTP = *update.OTP
	}
	if update.OTPExpiresAt != nil {
		u.OTPExpiresAt = *update.OTPExpiresAt
	}
	if update.DeletedAt != nil {
		u.DeletedAt = update.DeletedAt
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

type sentVerification struct {
	email, firstName, link string
}

type sentReset struct {
	email, firstName string
	otp              int
}

type stubMailer struct {
	verifications []sentVerification
	resets        []sentReset
}

func (m *stubMailer) SendAccountVerification(email, firstName, link string) {
	m.verifications = append(m.verifications, sentVerification{email, firstName, link})
}

func (m *stubMailer) SendPasswordReset(email, firstName string, otp int) {
	m.resets = append(m.resets, sentReset{email, firstName, otp})
}

type stubThrottle struct {
	allowed bool
	err     error
}

func (t *stubThrottle) Allow(context.Context, string, string) (bool, error) {
	return t.allowed, t.err
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SecretKey:                "secret",
		Algorithm:                "HS256",
		AccessTokenExpireHours:   2,
		VerifyTokenExpireMinutes: 15,
		ResetOTPExpireMinutes:    15,
	}
}

func newTestAuthService(t *testing.T, repo *stubUserRepo, mailer *stubMailer, throttle AttemptThrottle) (*AuthService, *token.Codec) {
	t.Helper()
	cfg := testAuthConfig()
	codec, err := token.NewCodec(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}
	svc := NewAuthService(repo, codec, mailer, throttle, cfg, "http://localhost:8080", zerolog.Nop())
	return svc, codec
}

func seedUser(t *testing.T, repo *stubUserRepo, email, pass string, verified bool) *domain.User {
	t.Helper()
	hash, err := password.Hash(pass)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{
		FirstName:    "Alice",
		Email:        email,
		PasswordHash: hash,
		IsVerified:   verified,
		OTP:          654321,
		OTPExpiresAt: time.Now().UTC().Add(15 * time.Minute),
	}
	if _, err := repo.Insert(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc, _ := newTestAuthService(t, repo, mailer, nil)

	err := svc.Signup(context.Background(), ports.SignupInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "A@X.com",
		Password:  "Abcdef12",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, ok := repo.users["a@x.com"]
	if !ok {
		t.Fatalf("expected user stored under normalized email")
	}
	if user.IsVerified {
		t.Fatalf("expected new account to start unverified")
	}
	if user.PasswordHash == "Abcdef12" {
		t.Fatalf("expected password to be hashed")
	}
	if !password.Verify("Abcdef12", user.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
	if user.OTP < 100000 || user.OTP > 999999 {
		t.Fatalf("otp out of range: %d", user.OTP)
	}

	if len(mailer.verifications) != 1 {
		t.Fatalf("expected one verification email, got %d", len(mailer.verifications))
	}
	sent := mailer.verifications[0]
	if sent.email != "a@x.com" || sent.firstName != "Alice" {
		t.Fatalf("unexpected recipient: %+v", sent)
	}
	if !strings.Contains(sent.link, "/auth/verify-account/") {
		t.Fatalf("unexpected verification link: %s", sent.link)
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc, _ := newTestAuthService(t, repo, mailer, nil)

	seeded := seedUser(t, repo, "a@x.com", "Abcdef12", false)
	before := cloneUser(repo.users["a@x.com"])

	err := svc.Signup(context.Background(), ports.SignupInput{
		FirstName: "Mallory",
		LastName:  "Smith",
		Email:     "a@x.com",
		Password:  "Other123",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	after := repo.users["a@x.com"]
	if after.PasswordHash != before.PasswordHash || after.OTP != before.OTP || after.FirstName != seeded.FirstName {
		t.Fatalf("duplicate signup mutated the existing record")
	}
	if len(mailer.verifications) != 0 {
		t.Fatalf("expected no email on conflict")
	}
}

func TestAuthService_AccountVerification_Success(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc, codec := newTestAuthService(t, repo, mailer, nil)

	seedUser(t, repo, "a@x.com", "Abcdef12", false)

	signed, err := codec.Issue(jwt.MapClaims{"email": "a@x.com", "otp": 654321}, 15*time.Minute)
	if err != nil {
		t.Fatalf("issue verify token: %v", err)
	}

	creds, err := svc.AccountVerification(context.Background(), signed)
	if err != nil {
		t.Fatalf("AccountVerification returned error: %v", err)
	}
	if creds.TokenType != "bearer" || creds.AccessToken == "" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if !repo.users["a@x.com"].IsVerified {
		t.Fatalf("expected account to be verified")
	}

	claims, err := codec.Decode(creds.AccessToken)
	if err != nil {
		t.Fatalf("decode access token: %v", err)
	}
	if sub, _ := token.Subject(claims); sub != "a@x.com" {
		t.Fatalf("unexpected token subject: %v", claims["sub"])
	}
}

func TestAuthService_AccountVerification_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo, &stubMailer{}, nil)

	// Malformed token.
	if _, err := svc.AccountVerification(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Unknown account behind a valid token.
	signed, _ := codec.Issue(jwt.MapClaims{"email": "ghost@x.com"}, 15*time.Minute)
	if _, err := svc.AccountVerification(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown account, got %v", err)
	}

	// Already verified.
	seedUser(t, repo, "done@x.com", "Abcdef12", true)
	signed, _ = codec.Issue(jwt.MapClaims{"email": "done@x.com"}, 15*time.Minute)
	if _, err := svc.AccountVerification(context.Background(), signed); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}

	// Expired link: the codec still decodes it, the engine must reject it.
	seedUser(t, repo, "late@x.com", "Abcdef12", false)
	signed, _ = codec.Issue(jwt.MapClaims{"email": "late@x.com"}, -time.Minute)
	if _, err := svc.AccountVerification(context.Background(), signed); !errors.Is(err, domain.ErrLinkExpired) {
		t.Fatalf("expected ErrLinkExpired, got %v", err)
	}
	if repo.users["late@x.com"].IsVerified {
		t.Fatalf("expired link must not verify the account")
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo, &stubMailer{}, nil)

	// Verification state is not required to log in.
	seedUser(t, repo, "a@x.com", "Abcdef12", false)

	creds, err := svc.Login(context.Background(), "a@x.com", "Abcdef12")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if creds.TokenType != "bearer" {
		t.Fatalf("unexpected token type: %s", creds.TokenType)
	}

	claims, err := codec.Decode(creds.AccessToken)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if sub, _ := token.Subject(claims); sub != "a@x.com" {
		t.Fatalf("unexpected subject: %v", claims["sub"])
	}
	exp, ok := token.ExpiresAt(claims)
	if !ok || time.Until(exp) < time.Hour {
		t.Fatalf("expected standard access token lifetime, got %v", exp)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, &stubMailer{}, nil)

	seedUser(t, repo, "a@x.com", "Abcdef12", true)

	if _, err := svc.Login(context.Background(), "ghost@x.com", "Abcdef12"); !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@x.com", "WrongPass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "a@x.com", "Abcdef12", true)

	svc, _ := newTestAuthService(t, repo, &stubMailer{}, &stubThrottle{allowed: false})
	if _, err := svc.Login(context.Background(), "a@x.com", "Abcdef12"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// A throttle backend failure fails open.
	svc, _ = newTestAuthService(t, repo, &stubMailer{}, &stubThrottle{err: errors.New("redis down")})
	if _, err := svc.Login(context.Background(), "a@x.com", "Abcdef12"); err != nil {
		t.Fatalf("expected throttle error to fail open, got %v", err)
	}
}

func TestAuthService_VerifyAccountRequest(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc, _ := newTestAuthService(t, repo, mailer, nil)

	seedUser(t, repo, "a@x.com", "Abcdef12", false)
	seedUser(t, repo, "done@x.com", "Abcdef12", true)

	if err := svc.VerifyAccountRequest(context.Background(), "a@x.com", "WrongPass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.VerifyAccountRequest(context.Background(), "a@x.com", "Abcdef12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.verifications) != 1 {
		t.Fatalf("expected a verification email for an unverified account")
	}

	// Already verified: same nil result, but no email.
	if err := svc.VerifyAccountRequest(context.Background(), "done@x.com", "Abcdef12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.verifications) != 1 {
		t.Fatalf("expected no email for a verified account")
	}
}

func TestAuthService_VerifyOTP_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, &stubMailer{}, nil)

	seedUser(t, repo, "a@x.com", "Abcdef12", false)

	creds, err := svc.VerifyOTP(context.Background(), "a@x.com", 654321)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if creds.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if !repo.users["a@x.com"].IsVerified {
		t.Fatalf("expected account to be verified")
	}
}

func TestAuthService_VerifyOTP_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, &stubMailer{}, nil)

	if _, err := svc.VerifyOTP(context.Background(), "ghost@x.com", 123456); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	seedUser(t, repo, "a@x.com", "Abcdef12", false)

	// Wrong code on an unexpired OTP.
	if _, err := svc.VerifyOTP(context.Background(), "a@x.com", 123456); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if repo.users["a@x.com"].IsVerified {
		t.Fatalf("invalid otp must not verify the account")
	}

	// Expired code is reported as expired even when the value matches.
	past := time.Now().UTC().Add(-time.Minute)
	repo.users["a@x.com"].OTPExpiresAt = past
	if _, err := svc.VerifyOTP(context.Background(), "a@x.com", 654321); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo, &stubMailer{}, nil)

	signed, err := codec.Issue(jwt.MapClaims{"sub": "a@x.com"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	creds, err := svc.RefreshToken(context.Background(), signed)
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	claims, err := codec.Decode(creds.AccessToken)
	if err != nil {
		t.Fatalf("decode refreshed token: %v", err)
	}
	if sub, _ := token.Subject(claims); sub != "a@x.com" {
		t.Fatalf("refresh changed the subject: %v", claims["sub"])
	}
}

func TestAuthService_RefreshToken_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo, &stubMailer{}, nil)

	if _, err := svc.RefreshToken(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthorizedToken) {
		t.Fatalf("expected ErrUnauthorizedToken, got %v", err)
	}

	// Missing subject.
	signed, _ := codec.Issue(jwt.MapClaims{"email": "a@x.com"}, time.Hour)
	if _, err := svc.RefreshToken(context.Background(), signed); !errors.Is(err, domain.ErrUnauthorizedToken) {
		t.Fatalf("expected ErrUnauthorizedToken for missing sub, got %v", err)
	}

	// Expired token cannot be refreshed.
	signed, _ = codec.Issue(jwt.MapClaims{"sub": "a@x.com"}, -time.Minute)
	if _, err := svc.RefreshToken(context.Background(), signed); !errors.Is(err, domain.ErrUnauthorizedToken) {
		t.Fatalf("expected ErrUnauthorizedToken for expired token, got %v", err)
	}
}
