package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAdminCredentials compares a login attempt against the configured id
// and bcrypt hash. The hash is always evaluated so a wrong id costs the same
// as a wrong password.
func CheckAdminCredentials(wantID, passwordHash, id, password string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(wantID), []byte(id)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	return idOK && pwErr == nil
}
