package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// generatedPasswordLength matches the original back office's default
// credential length. These passwords are handed over out-of-band and meant to
// be changed, not kept.
const generatedPasswordLength = 8

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generatePassword returns a random alphanumeric default credential.
func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
