package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account holder. Accounts are created unverified and
// become verified exactly once through the email verification code flow.
type User struct {
	ID                        bson.ObjectID `bson:"_id,omitempty"`
	FullName                  string        `bson:"full_name"`
	Username                  string        `bson:"username"`
	Email                     string        `bson:"email"`
	PasswordHash              string        `bson:"password_hash"`
	Verified                  bool          `bson:"verified"`
	VerificationCode          string        `bson:"verification_code,omitempty"`
	VerificationCodeExpiresAt time.Time     `bson:"verification_code_expires_at,omitempty"`
	CreatedAt                 time.Time     `bson:"created_at"`
	UpdatedAt                 time.Time     `bson:"updated_at"`
}

// UserSummary is the projection of a user embedded in read-side responses
// (project collaborators, task assignees, comment authors).
type UserSummary struct {
	ID       bson.ObjectID `bson:"_id"      json:"id"`
	FullName string        `bson:"full_name" json:"full_name"`
	Username string        `bson:"username"  json:"username"`
}
