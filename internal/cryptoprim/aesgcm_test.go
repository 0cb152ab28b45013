package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestAESGCM_RoundTrip(t *testing.T) {
	t.Parallel()

	key := make([]byte, cryptoprim.KeySize)
	iv := make([]byte, cryptoprim.NonceSize)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(i + 1)
	}

	plaintext := []byte("recover my stx wallet")
	ciphertext, tag, err := cryptoprim.AESGCMEncrypt(key, iv, plaintext)
	require.NoError(t, err)
	assert.Len(t, tag, cryptoprim.TagSize)

	decrypted, err := cryptoprim.AESGCMDecrypt(key, iv, ciphertext, tag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESGCM_TamperedTagFails(t *testing.T) {
	t.Parallel()

	key := make([]byte, cryptoprim.KeySize)
	iv := make([]byte, cryptoprim.NonceSize)

	ciphertext, tag, err := cryptoprim.AESGCMEncrypt(key, iv, []byte("payload"))
	require.NoError(t, err)

	tag[0] ^= 0xFF
	_, err = cryptoprim.AESGCMDecrypt(key, iv, ciphertext, tag)
	assert.Error(t, err)
}

func TestAESGCM_RejectsBadKeySize(t *testing.T) {
	t.Parallel()

	_, _, err := cryptoprim.AESGCMEncrypt(make([]byte, 16), make([]byte, cryptoprim.NonceSize), []byte("x"))
	assert.Error(t, err)
}
