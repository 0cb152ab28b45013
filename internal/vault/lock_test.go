package vault_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/vault"
)

func TestAcquireWalletLock(t *testing.T) {
	t.Parallel()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	lock, err := v.AcquireWalletLock("abc-123")
	require.NoError(t, err)

	lockPath := v.Path(vault.WalletDir("abc-123"), "session.lock")
	contents, err := os.ReadFile(filepath.Clean(lockPath))
	require.NoError(t, err)
	assert.NotEmpty(t, contents, "lock file records the holder pid")

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, lockPath)
}

func TestAcquireWalletLock_SecondAcquireFails(t *testing.T) {
	t.Parallel()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	lock, err := v.AcquireWalletLock("abc-123")
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = v.AcquireWalletLock("abc-123")
	assert.ErrorIs(t, err, vault.ErrLocked)
}

func TestWalletLock_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	lock, err := v.AcquireWalletLock("abc-123")
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())

	var nilLock *vault.WalletLock
	assert.NoError(t, nilLock.Release())
}

func TestAcquireWalletLock_IndependentWallets(t *testing.T) {
	t.Parallel()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)

	a, err := v.AcquireWalletLock("wallet-a")
	require.NoError(t, err)
	defer func() { _ = a.Release() }()

	b, err := v.AcquireWalletLock("wallet-b")
	require.NoError(t, err)
	defer func() { _ = b.Release() }()
}
