package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/natthaphonb/taskhub-api/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func issueTestToken(t *testing.T, a auth.JWTAuthenticator, userID string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	token, err := a.GenerateToken(&auth.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskhub-test",
			Audience:  jwt.ClaimStrings{"taskhub-test"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}, testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthenticator(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("taskhub-test", "taskhub-test")

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := Authenticator(jwtAuth, testSecret)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"expired token", "Bearer " + issueTestToken(t, jwtAuth, "u1", -time.Minute), http.StatusUnauthorized},
		{"valid token", "Bearer " + issueTestToken(t, jwtAuth, "64f000000000000000000001", time.Hour), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNoContent && gotUserID != "64f000000000000000000001" {
				t.Errorf("user id in context = %q", gotUserID)
			}
			if tt.wantStatus == http.StatusUnauthorized && gotUserID != "" {
				t.Error("next handler should not run on rejected requests")
			}
		})
	}
}

func TestAuthenticatorAcceptsLowercaseBearer(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("taskhub-test", "taskhub-test")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := Authenticator(jwtAuth, testSecret)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "bearer "+issueTestToken(t, jwtAuth, "u1", time.Hour))
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
