package btctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/btctx"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
)

func testBitcoinAccount(t *testing.T) *hdwallet.Account {
	t.Helper()
	mnemonic, err := hdwallet.GenerateMnemonic()
	require.NoError(t, err)
	seed, err := hdwallet.MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	account, err := hdwallet.Derive(seed, hdwallet.Testnet, 0, 0)
	require.NoError(t, err)
	return account
}

func TestBuildP2WPKHTransaction_RecipientAndChange(t *testing.T) {
	t.Parallel()
	sender := testBitcoinAccount(t)
	recipient := testBitcoinAccount(t)
	pubKey, err := cryptoprim.PublicKeyFromPrivate(sender.BitcoinPrivateKey)
	require.NoError(t, err)

	utxos := []btctx.UTXO{{TxID: "aa" + repeat("bb", 31), Vout: 0, Amount: 50000}}

	result, err := btctx.BuildP2WPKHTransaction(
		utxos, recipient.BitcoinAddress, 10000, 8,
		sender.BitcoinAddress, sender.BitcoinPrivateKey, pubKey, "tb", btctx.SpendCardinalOnly,
	)
	require.NoError(t, err)

	assert.NotEmpty(t, result.TxHex)
	assert.NotEmpty(t, result.Txid)
	assert.True(t, result.Fee > 0)
	assert.True(t, result.Change > 0)
	assert.Equal(t, int64(50000), 10000+result.Fee+result.Change)
}

func TestBuildP2WPKHTransaction_RefusesOrdinalUTXOUnderCardinalOnly(t *testing.T) {
	t.Parallel()
	sender := testBitcoinAccount(t)
	recipient := testBitcoinAccount(t)
	pubKey, err := cryptoprim.PublicKeyFromPrivate(sender.BitcoinPrivateKey)
	require.NoError(t, err)

	utxos := []btctx.UTXO{{TxID: "aa" + repeat("bb", 31), Vout: 0, Amount: 50000, Ordinal: true}}

	_, err = btctx.BuildP2WPKHTransaction(
		utxos, recipient.BitcoinAddress, 10000, 8,
		sender.BitcoinAddress, sender.BitcoinPrivateKey, pubKey, "tb", btctx.SpendCardinalOnly,
	)
	assert.Error(t, err)
}

func TestBuildP2WPKHTransaction_DustRecipientRejected(t *testing.T) {
	t.Parallel()
	sender := testBitcoinAccount(t)
	recipient := testBitcoinAccount(t)
	pubKey, err := cryptoprim.PublicKeyFromPrivate(sender.BitcoinPrivateKey)
	require.NoError(t, err)

	utxos := []btctx.UTXO{{TxID: "aa" + repeat("bb", 31), Vout: 0, Amount: 50000}}

	_, err = btctx.BuildP2WPKHTransaction(
		utxos, recipient.BitcoinAddress, 100, 8,
		sender.BitcoinAddress, sender.BitcoinPrivateKey, pubKey, "tb", btctx.SpendCardinalOnly,
	)
	assert.Error(t, err)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
