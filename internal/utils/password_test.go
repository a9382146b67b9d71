package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "rahasia123", hash)

	assert.True(t, VerifyPassword(hash, "rahasia123"))
	assert.False(t, VerifyPassword(hash, "rahasia124"))
	assert.False(t, VerifyPassword("not-a-hash", "rahasia123"))
}
