package bank

import "golang.org/x/crypto/bcrypt"

// bcryptCost follows the recommended minimum for interactive logins.
const bcryptCost = 12

func hashCredential(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyCredential(hash, credential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)) == nil
}
