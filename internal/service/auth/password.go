// Package auth provides the credential-hashing collaborator. The rest of
// the system treats hashes as opaque strings.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes plaintext credentials and verifies them against a
// stored hash.
type PasswordHasher interface {
	// Hash returns the opaque hash for a plaintext password.
	Hash(password string) (string, error)

	// Compare compares a stored hash with a plaintext candidate.
	// Returns nil on match, an error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher at the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare implements PasswordHasher.
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
