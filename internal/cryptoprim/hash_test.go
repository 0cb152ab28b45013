package cryptoprim_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestSHA256_KnownVector(t *testing.T) {
	t.Parallel()

	sum := cryptoprim.SHA256([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(sum[:]))
}

func TestHash160_Length(t *testing.T) {
	t.Parallel()

	h := cryptoprim.Hash160([]byte("some pubkey bytes"))
	assert.Len(t, h, 20)
}

func TestKeccak256_DiffersFromSHA256(t *testing.T) {
	t.Parallel()

	k := cryptoprim.Keccak256([]byte("abc"))
	s := cryptoprim.SHA256([]byte("abc"))
	assert.NotEqual(t, k, s[:])
	assert.Len(t, k, 32)
}

func TestDoubleSHA256_IsShaOfSha(t *testing.T) {
	t.Parallel()

	data := []byte("stacks")
	once := cryptoprim.SHA256(data)
	twice := cryptoprim.SHA256(once[:])
	got := cryptoprim.DoubleSHA256(data)
	assert.Equal(t, twice, got)
}
