package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestDeriveKeyPBKDF2_Deterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	k1 := cryptoprim.DeriveKeyPBKDF2([]byte("hunter2"), salt)
	k2 := cryptoprim.DeriveKeyPBKDF2([]byte("hunter2"), salt)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, cryptoprim.KeySize)

	k3 := cryptoprim.DeriveKeyPBKDF2([]byte("different"), salt)
	assert.NotEqual(t, k1, k3)
}

func TestDeriveKeyScrypt_Deterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	k1, err := cryptoprim.DeriveKeyScrypt([]byte("hunter2"), salt)
	require.NoError(t, err)
	k2, err := cryptoprim.DeriveKeyScrypt([]byte("hunter2"), salt)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, cryptoprim.KeySize)
}

func TestRandomSalt_Length(t *testing.T) {
	t.Parallel()

	salt, err := cryptoprim.RandomSalt(cryptoprim.SaltSize)
	require.NoError(t, err)
	assert.Len(t, salt, cryptoprim.SaltSize)
}
