package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestC32CheckEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	hash160 := make([]byte, 20)
	for i := range hash160 {
		hash160[i] = byte(i + 7)
	}

	addr := cryptoprim.C32CheckEncode(cryptoprim.StacksMainnetP2PKH, hash160)
	assert.Regexp(t, "^SP", addr)

	version, payload, err := cryptoprim.C32CheckDecode(addr)
	require.NoError(t, err)
	assert.Equal(t, cryptoprim.StacksMainnetP2PKH, version)
	assert.Equal(t, hash160, payload)
}

func TestC32CheckDecode_RejectsBadChecksum(t *testing.T) {
	t.Parallel()

	hash160 := make([]byte, 20)
	addr := cryptoprim.C32CheckEncode(cryptoprim.StacksMainnetP2PKH, hash160)
	corrupted := addr[:len(addr)-1] + "9"

	_, _, err := cryptoprim.C32CheckDecode(corrupted)
	assert.Error(t, err)
}

func TestC32CheckEncode_TestnetVersion(t *testing.T) {
	t.Parallel()

	hash160 := make([]byte, 20)
	for i := range hash160 {
		hash160[i] = byte(i)
	}
	addr := cryptoprim.C32CheckEncode(cryptoprim.StacksTestnetP2PKH, hash160)
	version, _, err := cryptoprim.C32CheckDecode(addr)
	require.NoError(t, err)
	assert.Equal(t, cryptoprim.StacksTestnetP2PKH, version)
}
