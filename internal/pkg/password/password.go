// Package password wraps bcrypt for one-way credential hashing.
package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt hash of the plaintext.
func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches the stored hash. A malformed hash is a
// verification failure, not an error.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
