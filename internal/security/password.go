package security

import "github.com/matthewhartstonge/argon2"

// HashPassword derives an argon2id hash of the given password in the standard
// encoded form. The plaintext is never persisted.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded hash. The
// comparison is constant-time within the argon2 library.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
