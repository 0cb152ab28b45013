// Package vault implements the filesystem substrate every other core package
// persists through: atomic, permission-restricted storage under $HOME/.aibtc/,
// plus the one-shot migration from the legacy $HOME/.stx402/ layout.
package vault

import (
	"os"
	"path/filepath"

	"github.com/aibtcdev/aibtc-core/internal/fileutil"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

const (
	// dirPerm is the permission mode for directories under the vault root.
	dirPerm = 0o700
	// filePerm is the default permission mode for files written through the vault.
	filePerm = 0o600

	homeDirName   = ".aibtc"
	legacyDirName = ".stx402"
)

// Vault is the filesystem substrate for wallet, config, and credential state.
// It never accepts inbound connections; every operation is local disk I/O.
type Vault struct {
	root string
}

// New creates a Vault rooted at $HOME/.aibtc (or root, if non-empty: used by
// tests to avoid touching the real home directory). It performs the one-shot
// $HOME/.stx402 -> $HOME/.aibtc migration when applicable.
func New(root string) (*Vault, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, coreerrors.Wrap(err, "resolving home directory")
		}
		root = filepath.Join(home, homeDirName)

		legacy := filepath.Join(home, legacyDirName)
		if migrateErr := migrateLegacy(legacy, root); migrateErr != nil {
			return nil, migrateErr
		}
	}

	if err := MkdirSecure(root); err != nil {
		return nil, err
	}

	return &Vault{root: root}, nil
}

// migrateLegacy renames legacy -> root iff legacy exists and root does not.
func migrateLegacy(legacy, root string) error {
	if _, err := os.Stat(root); err == nil {
		return nil // new layout already present, nothing to do
	}
	if _, err := os.Stat(legacy); err != nil {
		return nil // no legacy state either; fresh install
	}
	if err := os.Rename(legacy, root); err != nil {
		return coreerrors.Wrap(err, "migrating legacy state directory")
	}
	return nil
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// Path joins elem onto the vault root.
func (v *Vault) Path(elem ...string) string {
	return filepath.Join(append([]string{v.root}, elem...)...)
}

// Read reads the file at the given vault-relative path. Missing files return
// coreerrors.ErrNotFound so callers can treat them as "empty state".
func (v *Vault) Read(relPath string) ([]byte, error) {
	data, err := os.ReadFile(v.Path(relPath)) //nolint:gosec // G304: path is vault-relative, not user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerrors.ErrNotFound
		}
		return nil, coreerrors.Wrap(err, "reading %s", relPath)
	}
	return data, nil
}

// WriteAtomic writes data to the given vault-relative path using the
// temp-write -> fsync -> rename discipline; the target never contains a
// partial write after a crash.
func (v *Vault) WriteAtomic(relPath string, data []byte) error {
	path := v.Path(relPath)
	if err := MkdirSecure(filepath.Dir(path)); err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, data, filePerm); err != nil {
		return coreerrors.Wrap(err, "writing %s", relPath)
	}
	return nil
}

// Remove deletes the file at the given vault-relative path. Missing files are
// not an error.
func (v *Vault) Remove(relPath string) error {
	if err := os.Remove(v.Path(relPath)); err != nil && !os.IsNotExist(err) {
		return coreerrors.Wrap(err, "removing %s", relPath)
	}
	return nil
}

// RemoveDir deletes the directory at the given vault-relative path and
// everything under it. Missing directories are not an error.
func (v *Vault) RemoveDir(relPath string) error {
	if err := os.RemoveAll(v.Path(relPath)); err != nil {
		return coreerrors.Wrap(err, "removing %s", relPath)
	}
	return nil
}

// Rename moves srcRel to dstRel, both vault-relative.
func (v *Vault) Rename(srcRel, dstRel string) error {
	if err := os.Rename(v.Path(srcRel), v.Path(dstRel)); err != nil {
		return coreerrors.Wrap(err, "renaming %s to %s", srcRel, dstRel)
	}
	return nil
}

// Copy duplicates srcRel to dstRel, both vault-relative, preserving filePerm.
func (v *Vault) Copy(srcRel, dstRel string) error {
	data, err := v.Read(srcRel)
	if err != nil {
		return err
	}
	return v.WriteAtomic(dstRel, data)
}

// Exists reports whether relPath exists under the vault root.
func (v *Vault) Exists(relPath string) bool {
	_, err := os.Stat(v.Path(relPath))
	return err == nil
}

// MkdirSecure creates dir (and parents) with mode 0o700 if it does not exist.
func MkdirSecure(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return coreerrors.Wrap(err, "creating directory %s", dir)
	}
	return nil
}

// Standard vault-relative file paths, forming a stable filesystem layout.
const (
	WalletsIndexFile = "wallets.json"
	ConfigFile       = "config.json"
	CredentialsFile  = "credentials.json"
)

// WalletDir returns the vault-relative directory for a wallet's keystore.
func WalletDir(walletID string) string {
	return filepath.Join("wallets", walletID)
}

// KeystoreFile returns the vault-relative path to a wallet's keystore.json.
func KeystoreFile(walletID string) string {
	return filepath.Join(WalletDir(walletID), "keystore.json")
}

// KeystoreBackupFile returns the vault-relative path to the rotation backup.
func KeystoreBackupFile(walletID string) string {
	return filepath.Join(WalletDir(walletID), "keystore.json.backup")
}
