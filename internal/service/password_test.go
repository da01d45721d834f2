package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := generatePassword()
		require.NoError(t, err)
		assert.Len(t, password, generatedPasswordLength)
		for _, r := range password {
			assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected rune %q", r)
		}
		seen[password] = true
	}
	// 50 draws from a 62^8 space colliding would point at a broken source.
	assert.Greater(t, len(seen), 45)
}
