package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestBase58Check_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	encoded := cryptoprim.EncodeBase58Check(0x00, payload)
	version, decoded, err := cryptoprim.DecodeBase58Check(encoded)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), version)
	assert.Equal(t, payload, decoded)
}

func TestBase58Check_RejectsCorruptedChecksum(t *testing.T) {
	t.Parallel()

	encoded := cryptoprim.EncodeBase58Check(0x00, []byte{1, 2, 3, 4})
	corrupted := encoded[:len(encoded)-1] + "1"
	if corrupted == encoded {
		corrupted = encoded[:len(encoded)-1] + "2"
	}

	_, _, err := cryptoprim.DecodeBase58Check(corrupted)
	assert.Error(t, err)
}
