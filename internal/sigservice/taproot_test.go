package sigservice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/sigservice"
)

func TestSignAndVerifyTaprootKeyPath(t *testing.T) {
	t.Parallel()
	account := testAccount(t)

	internalXOnly, err := cryptoprim.XOnlyPubKey(account.TaprootPrivateKey)
	require.NoError(t, err)

	msgHash := cryptoprim.SHA256([]byte("taproot test message"))

	sig, err := sigservice.SignTaprootKeyPath(account.TaprootPrivateKey, msgHash[:], nil)
	require.NoError(t, err)

	ok, err := sigservice.VerifyTaprootKeyPath(internalXOnly, msgHash[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyTaprootKeyPath_TamperedMessageFails(t *testing.T) {
	t.Parallel()
	account := testAccount(t)

	internalXOnly, err := cryptoprim.XOnlyPubKey(account.TaprootPrivateKey)
	require.NoError(t, err)

	msgHash := cryptoprim.SHA256([]byte("taproot test message"))
	tamperedHash := cryptoprim.SHA256([]byte("different message"))

	sig, err := sigservice.SignTaprootKeyPath(account.TaprootPrivateKey, msgHash[:], nil)
	require.NoError(t, err)

	ok, err := sigservice.VerifyTaprootKeyPath(internalXOnly, tamperedHash[:], sig)
	require.NoError(t, err)
	assert.False(t, ok)
}
