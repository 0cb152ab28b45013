package keystore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/keystore"
	"github.com/aibtcdev/aibtc-core/internal/vault"
)

func newManager(t *testing.T) *keystore.Manager {
	t.Helper()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)
	return keystore.New(v)
}

func TestCreateWallet_ReturnsMnemonicOnce(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "hunter2!!", hdwallet.Testnet)
	require.NoError(t, err)
	assert.Regexp(t, "^ST", result.Meta.StxAddress)
	assert.Regexp(t, "^tb1q", result.Meta.BtcAddress)
	assert.Regexp(t, "^tb1p", result.Meta.TaprootAddress)
	assert.NotEmpty(t, result.Mnemonic)

	wallets, err := m.ListWallets()
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, result.Meta.ID, wallets[0].ID)
}

func TestUnlock_WrongPasswordFails(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "correct-password", hdwallet.Mainnet)
	require.NoError(t, err)

	_, err = m.Unlock(result.Meta.ID, "wrong-password")
	assert.Error(t, err)
}

func TestUnlock_DerivesSameAddresses(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "pw", hdwallet.Mainnet)
	require.NoError(t, err)

	unlocked, err := m.Unlock(result.Meta.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, result.Meta.StxAddress, unlocked.Account.StacksAddress)
	assert.Equal(t, result.Mnemonic, unlocked.Mnemonic)
}

func TestImportWallet_RejectsDuplicate(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	mnemonic, err := hdwallet.GenerateMnemonic()
	require.NoError(t, err)

	_, err = m.ImportWallet("first", mnemonic, "pw", hdwallet.Mainnet)
	require.NoError(t, err)

	_, err = m.ImportWallet("second", mnemonic, "pw", hdwallet.Mainnet)
	assert.Error(t, err)
}

func TestExportMnemonic_RequiresConfirmToken(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "pw", hdwallet.Mainnet)
	require.NoError(t, err)

	_, err = m.ExportMnemonic(result.Meta.ID, "pw", "nope")
	assert.Error(t, err)

	mnemonic, err := m.ExportMnemonic(result.Meta.ID, "pw", keystore.ExportConfirmToken)
	require.NoError(t, err)
	assert.Equal(t, result.Mnemonic, mnemonic)
}

func TestDeleteWallet_RemovesFromIndex(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "pw", hdwallet.Mainnet)
	require.NoError(t, err)

	err = m.DeleteWallet(result.Meta.ID, "pw", keystore.DeleteConfirmToken)
	require.NoError(t, err)

	wallets, err := m.ListWallets()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestDeleteWallet_RequiresConfirmToken(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "pw", hdwallet.Mainnet)
	require.NoError(t, err)

	err = m.DeleteWallet(result.Meta.ID, "pw", "not-delete")
	assert.Error(t, err)
}

func TestRotatePassword_NewPasswordWorksOldDoesNot(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "old-pw", hdwallet.Mainnet)
	require.NoError(t, err)

	require.NoError(t, m.RotatePassword(result.Meta.ID, "old-pw", "new-pw"))

	_, err = m.Unlock(result.Meta.ID, "old-pw")
	assert.Error(t, err)

	unlocked, err := m.Unlock(result.Meta.ID, "new-pw")
	require.NoError(t, err)
	assert.Equal(t, result.Mnemonic, unlocked.Mnemonic)
}

func TestRotatePassword_WrongOldPasswordLeavesKeystoreIntact(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	result, err := m.CreateWallet("main", "old-pw", hdwallet.Mainnet)
	require.NoError(t, err)

	err = m.RotatePassword(result.Meta.ID, "not-the-old-pw", "new-pw")
	assert.Error(t, err)

	unlocked, err := m.Unlock(result.Meta.ID, "old-pw")
	require.NoError(t, err)
	assert.Equal(t, result.Mnemonic, unlocked.Mnemonic)
}
