package handler

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/payload"
	"github.com/natthaphonb/taskhub-api/internal/usecase"
	"github.com/natthaphonb/taskhub-api/internal/validation"
)

// AuthHandler serves the signup, verification, login and password reset
// endpoints.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	jwtAuth              auth.JWTAuthenticator
	cfg                  *config.Config
	validate             *validation.Validator
	logger               *zerolog.Logger
}

func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	validate *validation.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		passwordResetUsecase: passwordResetUsecase,
		jwtAuth:              jwtAuth,
		cfg:                  cfg,
		validate:             validate,
		logger:               logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailTaken),
			errors.Is(err, usecase.ErrUsernameTaken),
			errors.Is(err, usecase.ErrUserAlreadyExists):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			respondInternal(w)
		}
		return
	}

	respondJSON(w, http.StatusCreated, userResponse(user))
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	user, err := h.verificationUsecase.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound),
			errors.Is(err, usecase.ErrAlreadyVerified),
			errors.Is(err, usecase.ErrCodeExpired),
			errors.Is(err, usecase.ErrCodeMismatch):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to verify email")
			respondInternal(w)
		}
		return
	}

	respondJSON(w, http.StatusOK, userResponse(user))
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req payload.ResendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	if err := h.verificationUsecase.Resend(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound),
			errors.Is(err, usecase.ErrAlreadyVerified):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			// Includes mail delivery failures: an explicit resend that cannot
			// be delivered is surfaced, unlike the best-effort signup email.
			h.logger.Error().Err(err).Msg("failed to resend verification code")
			respondInternal(w)
		}
		return
	}

	respondMessage(w, http.StatusOK, "verification code sent")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	token, user, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			respondMessage(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, usecase.ErrUserNotVerified):
			respondMessage(w, http.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to log in user")
			respondInternal(w)
		}
		return
	}

	respondJSON(w, http.StatusOK, payload.LoginResponse{
		Token: token,
		User:  userResponse(user),
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		respondInternal(w)
		return
	}

	// Unknown emails get the same answer as known ones.
	respondMessage(w, http.StatusOK, "if the email exists, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	claims := &auth.PasswordResetClaims{}
	if _, err := h.jwtAuth.ValidateTokenWithClaims(req.Token, h.cfg.Token.PasswordResetSecret, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			respondMessage(w, http.StatusBadRequest, usecase.ErrTokenExpired.Error())
			return
		}
		respondMessage(w, http.StatusBadRequest, "invalid password reset token")
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), claims.ID, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound),
			errors.Is(err, usecase.ErrTokenAlreadyUsed),
			errors.Is(err, usecase.ErrTokenExpired),
			errors.Is(err, usecase.ErrSamePassword):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to reset password")
			respondInternal(w)
		}
		return
	}

	respondMessage(w, http.StatusOK, "password has been reset")
}

func userResponse(user *model.User) payload.UserResponse {
	return payload.UserResponse{
		ID:       user.ID.Hex(),
		FullName: user.FullName,
		Username: user.Username,
		Email:    user.Email,
		Verified: user.Verified,
	}
}
