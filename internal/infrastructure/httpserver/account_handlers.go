package httpserver

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
	"github.com/identitykit/account-service/internal/utils"
)

// Account handlers
func (s *Server) signUp(c echo.Context) error {
	var req account.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.LoginID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login_id is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.registrationSvc.SignUp(c.Request().Context(), &req); err != nil {
		if errors.Is(err, account.ErrDuplicateAccount) {
			return echo.NewHTTPError(http.StatusConflict, "an account with this login or email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "account created, check your email to verify your address",
	})
}

func (s *Server) verifyEmail(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	verified, err := s.registrationSvc.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, verification.ErrInvalidOrExpiredToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "verification link is invalid or has expired")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to verify email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "email verified successfully",
		"account": verified,
	})
}

func (s *Server) resendVerificationEmail(c echo.Context) error {
	var req verification.ResendEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if req.Type == "" {
		req.Type = verification.TypeSignup
	}
	if !req.Type.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid verification type")
	}

	if err := s.registrationSvc.ResendEmail(c.Request().Context(), &req); err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound), errors.Is(err, verification.ErrNoPendingVerification):
			return echo.NewHTTPError(http.StatusNotFound, "no pending verification for this email")
		case errors.Is(err, verification.ErrResendThrottled):
			return echo.NewHTTPError(http.StatusTooManyRequests, "a verification email was sent recently, try again later")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to resend verification email")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "verification email queued",
	})
}
