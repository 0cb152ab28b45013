package sigservice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/sigservice"
)

func testAccount(t *testing.T) *hdwallet.Account {
	t.Helper()
	mnemonic, err := hdwallet.GenerateMnemonic()
	require.NoError(t, err)
	seed, err := hdwallet.MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	account, err := hdwallet.Derive(seed, hdwallet.Testnet, 0, 0)
	require.NoError(t, err)
	return account
}

func TestSignAndVerifyBitcoinMessage(t *testing.T) {
	t.Parallel()
	account := testAccount(t)

	sig, err := sigservice.SignBitcoinMessage(account.BitcoinPrivateKey, "hello world")
	require.NoError(t, err)

	ok, err := sigservice.VerifyBitcoinMessage("hello world", sig, account.BitcoinAddress, "tb")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyBitcoinMessage_WrongMessageFails(t *testing.T) {
	t.Parallel()
	account := testAccount(t)

	sig, err := sigservice.SignBitcoinMessage(account.BitcoinPrivateKey, "hello world")
	require.NoError(t, err)

	ok, err := sigservice.VerifyBitcoinMessage("tampered", sig, account.BitcoinAddress, "tb")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBitcoinMessage_WrongAddressFails(t *testing.T) {
	t.Parallel()
	a := testAccount(t)
	b := testAccount(t)

	sig, err := sigservice.SignBitcoinMessage(a.BitcoinPrivateKey, "hello world")
	require.NoError(t, err)

	ok, err := sigservice.VerifyBitcoinMessage("hello world", sig, b.BitcoinAddress, "tb")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBitcoinMessage_RejectsBadHeaderByte(t *testing.T) {
	t.Parallel()
	_, err := sigservice.VerifyBitcoinMessage("hello", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=", "tb1qxxxxxxxx", "tb")
	assert.Error(t, err)
}
