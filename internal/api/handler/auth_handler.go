package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/claritykit/claritykit-backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup registers a new account and emails a verification link.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  detailResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Profile:   req.Profile,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, detailResponse{Detail: "user added successfully"})
}

// VerifyAccount consumes an emailed verification link token.
//
// @Summary      Verify an account via signed link
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      202    {object}  tokenResponse
// @Failure      400    {object}  map[string]string
// @Router       /auth/verify-account/{token} [get]
func (h *AuthHandler) VerifyAccount(c echo.Context) error {
	creds, err := h.authService.AccountVerification(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, tokenResponse{
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
		Detail:      "account verified successfully",
	})
}

// Login authenticates credentials and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      202   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creds, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, tokenResponse{
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
	})
}

// VerifyAccountRequest re-sends the verification email. The response never
// reveals whether the account was already verified.
//
// @Summary      Re-send the verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  detailResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/verify-account-request [post]
func (h *AuthHandler) VerifyAccountRequest(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.VerifyAccountRequest(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detailResponse{Detail: "please check your email to confirm your account"})
}

// VerifyOTP checks an emailed OTP and marks the account verified on match.
//
// @Summary      Verify an account via OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and OTP"
// @Success      202   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creds, err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.UserOTP)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, tokenResponse{
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
		Detail:      "account verified successfully",
	})
}

// RefreshToken exchanges the bearer token for a fresh one.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  tokenResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh-token [get]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw, err := bearerToken(c)
	if err != nil {
		return err
	}

	creds, err := h.authService.RefreshToken(c.Request().Context(), raw)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, tokenResponse{
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
	})
}

// bearerToken extracts the raw token from the Authorization header. The
// refresh flow decodes it itself, so this route sits outside the auth
// middleware.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}
