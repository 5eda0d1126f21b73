package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the stored bcrypt digest for a plaintext credential.
// A cost below bcrypt.MinCost falls back to the library default.
func HashPassword(password string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// ComparePassword checks plain against a digest produced by HashPassword.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
