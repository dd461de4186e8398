package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
	"github.com/natthaphonb/taskhub-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (string, *model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	FullName string
	Username string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotVerified    = errors.New("email address not verified")
)

type authUsecase struct {
	userRepo     repository.UserRepository
	verification VerificationUsecase
	jwtAuth      auth.JWTAuthenticator
	cfg          *config.Config
	logger       *zerolog.Logger
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	verification VerificationUsecase,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		verification: verification,
		jwtAuth:      jwtAuth,
		cfg:          cfg,
		logger:       logger,
	}
}

// Register creates an unverified user and emails a verification code. The
// pending account lives in the durable user store, not process memory, so it
// survives restarts. A failed email send does not fail the signup; the user
// can request a resend.
func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if _, err := u.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, err := u.userRepo.GetUserByUsername(ctx, params.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		FullName:     params.FullName,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Verified:     false,
	})
	if err != nil {
		// The unique indexes are the backstop for the pre-checks above under
		// concurrent signups.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if err := u.verification.IssueCode(ctx, user); err != nil {
		if errors.Is(err, ErrMailDelivery) {
			u.logger.Warn().Err(err).Str("email", user.Email).
				Msg("verification email not delivered at signup, user can request a resend")
		} else {
			return nil, err
		}
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (string, *model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return "", nil, err
	} else if !ok {
		return "", nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return "", nil, ErrUserNotVerified
	}

	token, err := u.generateAccessToken(user.ID.Hex())
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (u *authUsecase) generateAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := auth.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Token.AccessTokenExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
		},
	}

	return u.jwtAuth.GenerateToken(claims, u.cfg.Token.Secret)
}
