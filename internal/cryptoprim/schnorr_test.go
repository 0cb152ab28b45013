package cryptoprim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

func TestSignSchnorr_VerifiesAgainstXOnlyKey(t *testing.T) {
	t.Parallel()

	sk := testPrivateKey()
	xOnly, err := cryptoprim.XOnlyPubKey(sk)
	require.NoError(t, err)
	assert.Len(t, xOnly, 32)

	hash := cryptoprim.SHA256([]byte("taproot spend"))
	sig, err := cryptoprim.SignSchnorr(sk, hash[:], nil)
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	ok, err := cryptoprim.VerifySchnorr(xOnly, hash[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignSchnorr_WithAuxRandIsDeterministic(t *testing.T) {
	t.Parallel()

	sk := testPrivateKey()
	hash := cryptoprim.SHA256([]byte("deterministic aux"))
	var aux [32]byte

	sig1, err := cryptoprim.SignSchnorr(sk, hash[:], &aux)
	require.NoError(t, err)
	sig2, err := cryptoprim.SignSchnorr(sk, hash[:], &aux)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
}

func TestTweakedOutputKey_DiffersFromInternalKey(t *testing.T) {
	t.Parallel()

	sk := testPrivateKey()
	internal, err := cryptoprim.XOnlyPubKey(sk)
	require.NoError(t, err)

	merkleRoot := cryptoprim.SHA256([]byte("leaf script"))
	tweaked, err := cryptoprim.TweakedOutputKey(internal, merkleRoot[:])
	require.NoError(t, err)
	assert.Len(t, tweaked, 32)
	assert.NotEqual(t, internal, tweaked)
}

func TestTweakedOutputKeyParity_MatchesTweakedOutputKey(t *testing.T) {
	t.Parallel()

	sk := testPrivateKey()
	internal, err := cryptoprim.XOnlyPubKey(sk)
	require.NoError(t, err)

	merkleRoot := cryptoprim.SHA256([]byte("leaf script"))
	tweaked, err := cryptoprim.TweakedOutputKey(internal, merkleRoot[:])
	require.NoError(t, err)

	withParity, _, err := cryptoprim.TweakedOutputKeyParity(internal, merkleRoot[:])
	require.NoError(t, err)
	assert.Equal(t, tweaked, withParity)
}
