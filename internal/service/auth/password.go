package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login attempt against a stored credential.
// The user store owns hashing at registration time; verification lives
// behind this interface so login handlers can be tested without bcrypt.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword and a
	// non-nil error otherwise, including on malformed hashes.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier, matching the bcrypt
// hashes the user store writes.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
