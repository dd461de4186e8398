package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/mailer"
	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
	"github.com/natthaphonb/taskhub-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword resets the user's password using the provided jti and new password.
	ResetPassword(ctx context.Context, jti, newPassword string) error
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
	ErrSamePassword     = errors.New("new password must differ from the current password")
)

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	jwtAuth   auth.JWTAuthenticator
	mail      mailer.Sender
	cfg       *config.Config
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	mail mailer.Sender,
	cfg *config.Config,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtAuth:   jwtAuth,
		mail:      mail,
		cfg:       cfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return err
	}

	// Invalidate any existing unused tokens for this user
	if err := u.tokenRepo.InvalidateUserTokens(ctx, user.ID.Hex()); err != nil {
		return err
	}

	tokenStr, jti, err := u.generatePasswordResetToken(user.ID.Hex(), user.Email)
	if err != nil {
		return err
	}

	resetToken := &model.PasswordResetToken{
		JTI:       jti,
		UserID:    user.ID,
		Email:     user.Email,
		Used:      false,
		ExpiresAt: time.Now().Add(u.cfg.Token.PasswordResetTokenExpiresIn),
	}

	if _, err := u.tokenRepo.CreateToken(ctx, resetToken); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", u.cfg.AppPasswordResetURL, tokenStr)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, resetLink, resetLink, u.cfg.Token.PasswordResetTokenExpiresIn)

	if err := u.mail.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, jti, newPassword string) error {
	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	if resetToken.Used {
		return ErrTokenAlreadyUsed
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return ErrTokenExpired
	}

	user, err := u.userRepo.GetUser(ctx, resetToken.UserID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	if same, err := security.VerifyPassword(newPassword, user.PasswordHash); err != nil {
		return err
	} else if same {
		return ErrSamePassword
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return u.tokenRepo.MarkTokenAsUsed(ctx, jti)
}

// generatePasswordResetToken creates a password reset JWT token with a unique JTI.
func (u *passwordResetUsecase) generatePasswordResetToken(userID, email string) (string, string, error) {
	jti, err := security.GenerateJTI()
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	claims := auth.PasswordResetClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Token.PasswordResetTokenExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.cfg.Token.PasswordResetSecret)
	if err != nil {
		return "", "", err
	}

	return tokenStr, jti, nil
}
