package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/claritykit/claritykit-backend/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ForgetPassword issues a fresh reset OTP and emails it.
//
// @Summary      Request a password reset OTP
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      forgetPasswordRequest  true  "Account email"
// @Success      200   {object}  detailResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /user/forget-password [post]
func (h *UserHandler) ForgetPassword(c echo.Context) error {
	var req forgetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ForgetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detailResponse{Detail: "otp sent successfully to your email address"})
}

// UpdatePassword changes the authenticated user's password.
//
// @Summary      Update the password
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Password change"
// @Success      200   {object}  detailResponse
// @Failure      400   {object}  map[string]string
// @Router       /user/update-password [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	return h.updatePassword(c, false)
}

// UpdatePasswordByOTP is the reset-flow variant; it additionally marks the
// account verified.
//
// @Summary      Update the password after an OTP reset
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Password change"
// @Success      200   {object}  detailResponse
// @Failure      400   {object}  map[string]string
// @Router       /user/update-password-by-otp [put]
func (h *UserHandler) UpdatePasswordByOTP(c echo.Context) error {
	return h.updatePassword(c, true)
}

func (h *UserHandler) updatePassword(c echo.Context, byOTP bool) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.UpdatePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.RePassword,
		OTP:             req.OTP,
	}

	if byOTP {
		err = h.userService.UpdatePasswordByOTP(c.Request().Context(), email, in)
	} else {
		err = h.userService.UpdatePassword(c.Request().Context(), email, in)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detailResponse{Detail: "password updated successfully"})
}

// UserInfo returns the authenticated user's profile.
//
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /user/user-info [get]
func (h *UserHandler) UserInfo(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}

	user, err := h.userService.UserInfo(c.Request().Context(), email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteAccount soft-deletes the authenticated user's account.
//
// @Summary      Delete the account
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  detailResponse
// @Failure      400  {object}  map[string]string
// @Router       /user/delete-account [delete]
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteAccount(c.Request().Context(), email); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, detailResponse{Detail: "user account deleted successfully"})
}
