package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateVerificationCode returns a 6-digit numeric one-time code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateShortID returns a random alphanumeric identifier of the given
// length. Uniqueness is not guaranteed here; callers must detect collisions
// at the store and retry.
func GenerateShortID(length int) (string, error) {
	id := make([]byte, length)
	max := big.NewInt(int64(len(shortIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id[i] = shortIDAlphabet[n.Int64()]
	}
	return string(id), nil
}

// GenerateJTI generates a unique token identifier.
func GenerateJTI() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
