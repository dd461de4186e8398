package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/mailer"
	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
	"github.com/natthaphonb/taskhub-api/internal/security"
)

// VerificationUsecase defines the business logic for email verification codes.
type VerificationUsecase interface {
	// IssueCode generates a fresh verification code for the user, overwriting
	// any previous one, and emails it. A mail failure is reported as
	// ErrMailDelivery after the code has been stored.
	IssueCode(ctx context.Context, user *model.User) error

	// Verify checks the submitted code against the pending one. On success
	// the code is cleared and the user becomes verified, exactly once.
	Verify(ctx context.Context, email, code string) (*model.User, error)

	// Resend re-issues a verification code for an unverified account.
	Resend(ctx context.Context, email string) error
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyVerified = errors.New("email address already verified")
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrCodeMismatch    = errors.New("verification code does not match")

	// ErrMailDelivery marks failures of the email collaborator so callers can
	// decide whether delivery is fatal for their flow.
	ErrMailDelivery = errors.New("failed to send email")
)

type verificationUsecase struct {
	userRepo repository.UserRepository
	mail     mailer.Sender
	cfg      *config.Config
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	userRepo repository.UserRepository,
	mail mailer.Sender,
	cfg *config.Config,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo: userRepo,
		mail:     mail,
		cfg:      cfg,
	}
}

func (u *verificationUsecase) IssueCode(ctx context.Context, user *model.User) error {
	code, err := security.GenerateVerificationCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(u.cfg.OTP.ExpiresIn)
	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expiresAt,
	}); err != nil {
		return err
	}

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your verification code is:</p>
		<h2>%s</h2>
		<p>It expires in %s. If you did not sign up, you can ignore this email.</p>
	`, user.FullName, code, u.cfg.OTP.ExpiresIn)

	if err := u.mail.SendHTML([]string{user.Email}, "Verify your email address", htmlBody); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return nil
}

func (u *verificationUsecase) Verify(ctx context.Context, email, code string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	if user.Verified {
		return nil, ErrAlreadyVerified
	}

	if user.VerificationCode == "" || time.Now().After(user.VerificationCodeExpiresAt) {
		return nil, ErrCodeExpired
	}

	if user.VerificationCode != code {
		return nil, ErrCodeMismatch
	}

	verified := true
	user, err = u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		Verified:              &verified,
		ClearVerificationCode: true,
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (u *verificationUsecase) Resend(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	// Unlike signup, an explicit resend that cannot be delivered is a
	// user-visible failure.
	return u.IssueCode(ctx, user)
}
