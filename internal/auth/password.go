package auth

import "golang.org/x/crypto/bcrypt"

// Bcrypt cost bounds. Anything below MinBcryptCost is too cheap to resist
// offline brute force against a leaked hash.
const (
	DefaultBcryptCost = 12
	MinBcryptCost     = 10
)

// HashPassword derives a salted bcrypt hash from the plaintext. The cost
// is clamped to MinBcryptCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext candidate against a stored hash.
// Neither value is ever logged or returned.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
