package handler

type signupRequest struct {
	FirstName string `json:"first_name" validate:"required,min=3,max=50"`
	LastName  string `json:"last_name"  validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
	Profile   string `json:"profile,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type verifyOTPRequest struct {
	Email   string `json:"email"    validate:"required,email"`
	UserOTP int    `json:"user_otp" validate:"required"`
}

// detailResponse is the generic success envelope.
type detailResponse struct {
	Detail string `json:"detail"`
}

// tokenResponse carries an issued access token; Detail is set on flows that
// also report an outcome (account verification).
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Detail      string `json:"detail,omitempty"`
}
