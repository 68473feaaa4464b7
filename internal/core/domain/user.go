package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

// User models one registered identity. Email is the stable identifier;
// PasswordHash is produced only by the password hasher and never leaves
// the service in clear form.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Profile      string     `json:"profile,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	IsVerified   bool       `json:"is_verified"`
	OTP          int        `json:"-"`
	OTPExpiresAt time.Time  `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Lookup misses on login paths deliberately share the invalid-credentials
// message so responses never reveal whether the account exists.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnknownAccount     = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorizedToken  = errors.New("invalid or expired refresh token")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrLinkExpired        = errors.New("verification link expired")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("invalid otp")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUpdateFailed       = errors.New("user update failed")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a uniform random 6-digit code in [100000, 999999].
func GenerateOTP() int {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic("otp generation: " + err.Error())
	}
	return otpMin + int(n.Int64())
}

// NormalizeEmail canonicalises an address for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// OTPExpired reports whether the stored OTP is no longer usable at now.
// The code is valid only strictly before its expiration instant.
func (u *User) OTPExpired(now time.Time) bool {
	return !u.OTPExpiresAt.After(now)
}
