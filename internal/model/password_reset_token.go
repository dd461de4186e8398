package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken represents a single-use password reset grant identified
// by a random JTI. Tokens expire one hour after issuance and are invalidated
// in bulk whenever a newer one is requested for the same user.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	JTI       string        `bson:"jti"`
	Email     string        `bson:"email"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
