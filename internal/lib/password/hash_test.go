package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("senha123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "senha123", hash)

	assert.NoError(t, CompareHash(hash, "senha123"))
	assert.Error(t, CompareHash(hash, "senha124"))
}

func TestGetHashProducesDistinctSalts(t *testing.T) {
	h1, err := GetHash("senha123")
	require.NoError(t, err)
	h2, err := GetHash("senha123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
