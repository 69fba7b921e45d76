package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenShape(t *testing.T) {
	gen := NewTokenGenerator()

	for i := 0; i < 20; i++ {
		token, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, token, tokenLength)
		assert.True(t, strings.ContainsAny(token, tokenUppercase), "missing uppercase: %q", token)
		assert.True(t, strings.ContainsAny(token, tokenLowercase), "missing lowercase: %q", token)
		assert.True(t, strings.ContainsAny(token, tokenDigits), "missing digit: %q", token)
		assert.True(t, strings.ContainsAny(token, tokenSpecial), "missing special: %q", token)
	}
}

func TestGenerateTokenVaries(t *testing.T) {
	gen := NewTokenGenerator()

	a, err := gen.Generate()
	require.NoError(t, err)
	b, err := gen.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
