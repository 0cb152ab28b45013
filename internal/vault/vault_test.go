package vault_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
	"github.com/aibtcdev/aibtc-core/internal/vault"
)

func TestVault_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, v.WriteAtomic(vault.ConfigFile, []byte(`{"version":1}`)))

	data, err := v.Read(vault.ConfigFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(data))
}

func TestVault_ReadMissing_IsNotFound(t *testing.T) {
	t.Parallel()

	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	_, err = v.Read("missing.json")
	assert.ErrorIs(t, err, coreerrors.ErrNotFound)
}

func TestVault_MigratesLegacyDirectory(t *testing.T) {
	tmp := t.TempDir()
	legacy := filepath.Join(tmp, ".stx402")
	require.NoError(t, vault.MkdirSecure(legacy))
	require.NoError(t, vault.MkdirSecure(filepath.Join(legacy, "wallets")))

	t.Setenv("HOME", tmp)
	v, err := vault.New("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, ".aibtc"), v.Root())
	assert.DirExists(t, filepath.Join(tmp, ".aibtc", "wallets"))
	assert.NoDirExists(t, legacy)
}

func TestWalletLock_RefusesSecondAcquire(t *testing.T) {
	t.Parallel()

	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	lock, err := v.AcquireWalletLock("wallet-a")
	require.NoError(t, err)

	_, err = v.AcquireWalletLock("wallet-a")
	assert.ErrorIs(t, err, vault.ErrLocked)

	require.NoError(t, lock.Release())

	lock2, err := v.AcquireWalletLock("wallet-a")
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}
