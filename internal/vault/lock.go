package vault

import (
	"os"
	"path/filepath"
	"strconv"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// ErrLocked indicates another process already holds the wallet's lock file.
var ErrLocked = &coreerrors.CoreError{
	Code:     "WALLET_LOCKED_BY_OTHER_PROCESS",
	Message:  "wallet is already unlocked by another process",
	ExitCode: coreerrors.ExitPermission,
}

// WalletLock is an advisory, file-based lock preventing two processes from
// holding the same wallet unlocked concurrently. The vault provides no
// inter-process locking for ordinary reads/writes (last-writer-wins); this
// lock is a narrow exception scoped to unlocked sessions.
type WalletLock struct {
	path string
}

// AcquireWalletLock creates the lock file for walletID, failing with ErrLocked
// if it already exists (O_EXCL is atomic at the filesystem level).
func (v *Vault) AcquireWalletLock(walletID string) (*WalletLock, error) {
	path := v.Path(WalletDir(walletID), "session.lock")
	if err := MkdirSecure(filepath.Dir(path)); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //nolint:gosec // G304: path is vault-relative
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, coreerrors.Wrap(err, "acquiring wallet lock")
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = os.Remove(path)
		return nil, coreerrors.Wrap(err, "writing wallet lock")
	}

	return &WalletLock{path: path}, nil
}

// Release removes the lock file. Safe to call multiple times.
func (l *WalletLock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return coreerrors.Wrap(err, "releasing wallet lock")
	}
	return nil
}
