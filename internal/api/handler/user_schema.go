package handler

type forgetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	RePassword  string `json:"re_password"  validate:"required,min=8"`
	OldPassword string `json:"old_password" validate:"required,min=8"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
	OTP         int    `json:"otp"`
}
