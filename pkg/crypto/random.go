package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// GenerateRandomString returns a random URL-safe string of the given length.
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

var serialLimit = new(big.Int).Lsh(big.NewInt(1), 127)

func randomSerial() (*big.Int, error) {
	return rand.Int(rand.Reader, serialLimit)
}
