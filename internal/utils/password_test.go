package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-api/internal/constants"
)

func TestGeneratePassword_Length(t *testing.T) {
	for _, length := range []int{1, constants.GeneratedPasswordLength, 32} {
		password, err := GeneratePassword(length)
		require.NoError(t, err)
		require.Len(t, password, length)
	}
}

func TestGeneratePassword_Alphabet(t *testing.T) {
	password, err := GeneratePassword(256)
	require.NoError(t, err)

	for _, r := range password {
		require.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected character %q", r)
	}
}

func TestGeneratePassword_NoDuplicates(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		password, err := GeneratePassword(constants.GeneratedPasswordLength)
		require.NoError(t, err)
		_, dup := seen[password]
		require.False(t, dup, "duplicate password generated: %s", password)
		seen[password] = struct{}{}
	}
}
