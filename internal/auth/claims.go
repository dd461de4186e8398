package auth

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the claims carried by an access token. UserID is the hex
// form of the user's ObjectID.
type AccessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// PasswordResetClaims are the claims carried by a password reset token. The
// registered ID (jti) ties the token to its single-use record in the store.
type PasswordResetClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
