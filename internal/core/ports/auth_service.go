package ports

import "context"

// SignupInput carries the fields of a registration request.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Profile   string
}

// Credentials is the issued access token pair returned by login-grade flows.
type Credentials struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) error
	AccountVerification(ctx context.Context, token string) (*Credentials, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	VerifyAccountRequest(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email string, otp int) (*Credentials, error)
	RefreshToken(ctx context.Context, token string) (*Credentials, error)
}
