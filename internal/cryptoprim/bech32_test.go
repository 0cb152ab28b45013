package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestSegwitAddress_V0RoundTrip(t *testing.T) {
	t.Parallel()

	program := make([]byte, 20)
	for i := range program {
		program[i] = byte(i)
	}

	addr, err := cryptoprim.EncodeSegwitAddress("bc", 0, program)
	require.NoError(t, err)
	assert.Regexp(t, "^bc1q", addr)

	hrp, version, decoded, err := cryptoprim.DecodeSegwitAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, "bc", hrp)
	assert.Equal(t, byte(0), version)
	assert.Equal(t, program, decoded)
}

func TestSegwitAddress_V1Bech32mRoundTrip(t *testing.T) {
	t.Parallel()

	program := make([]byte, 32)
	for i := range program {
		program[i] = byte(i + 1)
	}

	addr, err := cryptoprim.EncodeSegwitAddress("bc", 1, program)
	require.NoError(t, err)
	assert.Regexp(t, "^bc1p", addr)

	_, version, decoded, err := cryptoprim.DecodeSegwitAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, byte(1), version)
	assert.Equal(t, program, decoded)
}
