package payload

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Username string `json:"username"  validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest is the body of POST /api/auth/verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

// ResendCodeRequest is the body of POST /api/auth/resend-code.
type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// LoginResponse is the success body of POST /api/auth/login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
