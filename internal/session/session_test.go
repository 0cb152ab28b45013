package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/session"
)

func testDerivedAccount(t *testing.T) *hdwallet.Account {
	t.Helper()
	mnemonic, err := hdwallet.GenerateMnemonic()
	require.NoError(t, err)
	seed, err := hdwallet.MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	account, err := hdwallet.Derive(seed, hdwallet.Testnet, 0, 0)
	require.NoError(t, err)
	return account
}

func TestManager_LockedByDefault(t *testing.T) {
	t.Parallel()
	m := session.New()
	assert.False(t, m.IsUnlocked())
	assert.Nil(t, m.GetAccount())
}

func TestManager_UnlockThenLock(t *testing.T) {
	t.Parallel()
	m := session.New()
	derived := testDerivedAccount(t)

	account, err := session.FromKeystoreAccount("wallet-1", hdwallet.Testnet, derived)
	require.NoError(t, err)

	m.UnlockFromKeystore(account, 0)
	assert.True(t, m.IsUnlocked())
	assert.Equal(t, derived.StacksAddress, m.GetAddresses().StxAddress)

	m.Lock()
	assert.False(t, m.IsUnlocked())
	assert.Nil(t, m.GetAccount())
}

func TestManager_ExpiresLazily(t *testing.T) {
	t.Parallel()
	m := session.New()
	derived := testDerivedAccount(t)
	account, err := session.FromKeystoreAccount("wallet-1", hdwallet.Testnet, derived)
	require.NoError(t, err)

	m.UnlockFromKeystore(account, 10*time.Millisecond)
	assert.True(t, m.IsUnlocked())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, m.IsUnlocked())
	assert.Nil(t, m.GetAccount())
}

func TestManager_UnlockZeroizesPreviousSession(t *testing.T) {
	t.Parallel()
	m := session.New()

	firstDerived := testDerivedAccount(t)
	first, err := session.FromKeystoreAccount("wallet-1", hdwallet.Testnet, firstDerived)
	require.NoError(t, err)
	firstKeyRef := first.StxPrivateKey
	m.UnlockFromKeystore(first, 0)

	secondDerived := testDerivedAccount(t)
	second, err := session.FromKeystoreAccount("wallet-2", hdwallet.Testnet, secondDerived)
	require.NoError(t, err)
	m.UnlockFromKeystore(second, 0)

	allZero := true
	for _, b := range firstKeyRef {
		if b != 0 {
			allZero = false
			break
		}
	}
	assert.True(t, allZero)
	assert.Equal(t, "wallet-2", m.GetAccount().WalletID)
}

func TestManager_RequireUnlocked(t *testing.T) {
	t.Parallel()
	m := session.New()

	_, err := m.RequireUnlocked()
	assert.Error(t, err)

	derived := testDerivedAccount(t)
	account, err := session.FromKeystoreAccount("wallet-1", hdwallet.Testnet, derived)
	require.NoError(t, err)
	m.UnlockFromKeystore(account, 0)

	got, err := m.RequireUnlocked()
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", got.WalletID)
}
