package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newVerificationFixture(t *testing.T) (VerificationUsecase, AuthUsecase, *mockUserRepo, *mockMailer) {
	t.Helper()

	cfg := testConfig()
	userRepo := newMockUserRepo()
	mail := &mockMailer{}
	verification := NewVerificationUsecase(userRepo, mail, cfg)

	jwtAuth := newTestJWTAuth()
	logger := newNopLogger()
	authUsecase := NewAuthUsecase(userRepo, verification, jwtAuth, cfg, logger)

	return verification, authUsecase, userRepo, mail
}

func TestVerifyHappyPath(t *testing.T) {
	verification, authUsecase, userRepo, _ := newVerificationFixture(t)
	user := registerUser(t, authUsecase, "ann@example.com", "ann")
	code := userRepo.storedCode(user.ID.Hex())

	verified, err := verification.Verify(context.Background(), "ann@example.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.Verified {
		t.Error("user should be verified")
	}
	if verified.VerificationCode != "" {
		t.Error("verification code should be cleared after success")
	}

	// The transition is one-way; a second attempt is rejected.
	if _, err := verification.Verify(context.Background(), "ann@example.com", code); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("second verify: got %v, want ErrAlreadyVerified", err)
	}
}

func TestVerifyRejectsMismatchAndExpiry(t *testing.T) {
	verification, authUsecase, userRepo, _ := newVerificationFixture(t)
	user := registerUser(t, authUsecase, "ann@example.com", "ann")
	code := userRepo.storedCode(user.ID.Hex())

	if _, err := verification.Verify(context.Background(), "nobody@example.com", code); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email: got %v, want ErrUserNotFound", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := verification.Verify(context.Background(), "ann@example.com", wrong); !errors.Is(err, ErrCodeMismatch) {
		t.Errorf("wrong code: got %v, want ErrCodeMismatch", err)
	}

	userRepo.setCodeExpiry(user.ID.Hex(), time.Now().Add(-time.Minute))
	if _, err := verification.Verify(context.Background(), "ann@example.com", code); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("expired code: got %v, want ErrCodeExpired", err)
	}
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	verification, authUsecase, userRepo, mail := newVerificationFixture(t)
	user := registerUser(t, authUsecase, "ann@example.com", "ann")
	first := userRepo.storedCode(user.ID.Hex())

	if err := verification.Resend(context.Background(), "ann@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}

	second := userRepo.storedCode(user.ID.Hex())
	if second == "" {
		t.Fatal("no code stored after resend")
	}
	if len(mail.sent) != 2 {
		t.Errorf("sent %d emails, want 2", len(mail.sent))
	}

	// The superseded code no longer verifies unless it happens to collide.
	if first != second {
		if _, err := verification.Verify(context.Background(), "ann@example.com", first); !errors.Is(err, ErrCodeMismatch) {
			t.Errorf("stale code: got %v, want ErrCodeMismatch", err)
		}
	}
}

func TestResendFailuresSurface(t *testing.T) {
	verification, authUsecase, _, mail := newVerificationFixture(t)
	registerUser(t, authUsecase, "ann@example.com", "ann")

	if err := verification.Resend(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email: got %v, want ErrUserNotFound", err)
	}

	// Unlike signup, a failed delivery on an explicit resend is an error.
	mail.fail = true
	if err := verification.Resend(context.Background(), "ann@example.com"); !errors.Is(err, ErrMailDelivery) {
		t.Errorf("mail failure: got %v, want ErrMailDelivery", err)
	}
}
