// Package keystore manages the wallet index and per-wallet encrypted
// keystores: create, import, export, delete, rotate. It never exposes
// plaintext key material directly; unlocking hands decrypted material to
// internal/session, which is the only long-lived holder of secrets.
package keystore

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/metrics"
	"github.com/aibtcdev/aibtc-core/internal/vault"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// ExportConfirmToken must be passed verbatim to ExportMnemonic.
const ExportConfirmToken = "I_UNDERSTAND_THE_RISKS"

// DeleteConfirmToken must be passed verbatim to DeleteWallet.
const DeleteConfirmToken = "DELETE"

// WalletMeta is one row of the wallet index (wallets.json).
type WalletMeta struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Network        string     `json:"network"` // "mainnet" | "testnet"
	StxAddress     string     `json:"stxAddress"`
	BtcAddress     string     `json:"btcAddress"`
	TaprootAddress string     `json:"taprootAddress"`
	SponsorAPIKey  string     `json:"sponsorApiKey,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastUsed       *time.Time `json:"lastUsed,omitempty"`
}

type keystoreFile struct {
	Version      int      `json:"version"`
	Encrypted    blobJSON `json:"encrypted"`
	AddressIndex uint32   `json:"addressIndex"`
}

type blobJSON struct {
	Ciphertext string  `json:"ciphertext"`
	IV         string  `json:"iv"`
	AuthTag    string  `json:"authTag"`
	Salt       string  `json:"salt"`
	KDF        kdfJSON `json:"kdf"`
	Version    int     `json:"version"`
}

type kdfJSON struct {
	N      int    `json:"N"`
	R      int    `json:"r"`
	P      int    `json:"p"`
	KeyLen int    `json:"keyLen"`
	Name   string `json:"name"`
}

// Manager owns the wallet index and keystore files for a single vault root.
type Manager struct {
	v *vault.Vault
}

// New constructs a Manager backed by v.
func New(v *vault.Vault) *Manager {
	return &Manager{v: v}
}

func (m *Manager) loadIndex() ([]WalletMeta, error) {
	data, err := m.v.Read(vault.WalletsIndexFile)
	if err != nil {
		if coreerrors.Is(err, coreerrors.ErrNotFound) {
			return []WalletMeta{}, nil
		}
		return nil, err
	}
	var index []WalletMeta
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, coreerrors.Wrap(err, "parsing wallet index")
	}
	return index, nil
}

func (m *Manager) saveIndex(index []WalletMeta) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return coreerrors.Wrap(err, "encoding wallet index")
	}
	return m.v.WriteAtomic(vault.WalletsIndexFile, data)
}

// ListWallets returns the wallet index, ordered as stored.
func (m *Manager) ListWallets() ([]WalletMeta, error) {
	return m.loadIndex()
}

func findWallet(index []WalletMeta, id string) (WalletMeta, int) {
	for i, w := range index {
		if w.ID == id {
			return w, i
		}
	}
	return WalletMeta{}, -1
}

func networkString(n hdwallet.Network) string {
	if n == hdwallet.Testnet {
		return "testnet"
	}
	return "mainnet"
}

func parseNetwork(s string) hdwallet.Network {
	if s == "testnet" {
		return hdwallet.Testnet
	}
	return hdwallet.Mainnet
}

func encryptMnemonic(password, mnemonic string) (blobJSON, error) {
	salt, err := cryptoprim.RandomSalt(cryptoprim.SaltSize)
	if err != nil {
		return blobJSON{}, err
	}
	iv, err := cryptoprim.RandomSalt(cryptoprim.NonceSize)
	if err != nil {
		return blobJSON{}, err
	}

	key, err := cryptoprim.DeriveKeyScrypt([]byte(password), salt)
	if err != nil {
		return blobJSON{}, err
	}
	ciphertext, tag, err := cryptoprim.AESGCMEncrypt(key, iv, []byte(mnemonic))
	if err != nil {
		return blobJSON{}, err
	}

	return blobJSON{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		AuthTag:    base64.StdEncoding.EncodeToString(tag),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		KDF: kdfJSON{
			N: cryptoprim.ScryptN, R: cryptoprim.ScryptR, P: cryptoprim.ScryptP,
			KeyLen: cryptoprim.KeySize, Name: "scrypt",
		},
		Version: 1,
	}, nil
}

func decryptMnemonic(password string, blob blobJSON) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(blob.Salt)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding salt")
	}
	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding iv")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding ciphertext")
	}
	tag, err := base64.StdEncoding.DecodeString(blob.AuthTag)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding auth tag")
	}

	key, err := cryptoprim.DeriveKeyScrypt([]byte(password), salt)
	if err != nil {
		return "", err
	}
	plaintext, err := cryptoprim.AESGCMDecrypt(key, iv, ciphertext, tag)
	if err != nil {
		return "", coreerrors.ErrInvalidPassword
	}
	return string(plaintext), nil
}

// CreateResult is returned by CreateWallet and carries the one-time mnemonic.
type CreateResult struct {
	Meta     WalletMeta
	Mnemonic string
}

// CreateWallet generates a fresh 24-word mnemonic, derives its addresses, and
// persists a new keystore + index row. The mnemonic is returned exactly once.
func (m *Manager) CreateWallet(name, password string, network hdwallet.Network) (*CreateResult, error) {
	mnemonic, err := hdwallet.GenerateMnemonic()
	if err != nil {
		return nil, err
	}
	return m.createFromMnemonic(name, mnemonic, password, network)
}

// ImportWallet validates an externally-supplied mnemonic and imports it,
// refusing a duplicate (same derived Stacks address on the same network).
func (m *Manager) ImportWallet(name, mnemonic, password string, network hdwallet.Network) (*CreateResult, error) {
	normalized := hdwallet.NormalizeMnemonicInput(mnemonic)
	if err := hdwallet.ValidateMnemonic(normalized); err != nil {
		return nil, err
	}

	seed, err := hdwallet.MnemonicToSeed(normalized, "")
	if err != nil {
		return nil, err
	}
	account, err := hdwallet.Derive(seed, network, 0, 0)
	if err != nil {
		return nil, err
	}

	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}
	for _, w := range index {
		if w.StxAddress == account.StacksAddress && w.Network == networkString(network) {
			return nil, coreerrors.New("WALLET_EXISTS", "a wallet for this mnemonic already exists")
		}
	}

	return m.createFromMnemonic(name, normalized, password, network)
}

func (m *Manager) createFromMnemonic(name, mnemonic, password string, network hdwallet.Network) (*CreateResult, error) {
	seed, err := hdwallet.MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, err
	}
	account, err := hdwallet.Derive(seed, network, 0, 0)
	if err != nil {
		return nil, err
	}

	blob, err := encryptMnemonic(password, mnemonic)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ksFile := keystoreFile{Version: 1, Encrypted: blob, AddressIndex: 0}
	data, err := json.MarshalIndent(ksFile, "", "  ")
	if err != nil {
		return nil, coreerrors.Wrap(err, "encoding keystore")
	}
	if err := m.v.WriteAtomic(vault.KeystoreFile(id), data); err != nil {
		return nil, err
	}

	meta := WalletMeta{
		ID:             id,
		Name:           name,
		Network:        networkString(network),
		StxAddress:     account.StacksAddress,
		BtcAddress:     account.BitcoinAddress,
		TaprootAddress: account.TaprootAddress,
		CreatedAt:      time.Now().UTC(),
	}

	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}
	index = append(index, meta)
	if err := m.saveIndex(index); err != nil {
		return nil, err
	}

	return &CreateResult{Meta: meta, Mnemonic: mnemonic}, nil
}

func (m *Manager) readKeystore(walletID string) (keystoreFile, error) {
	data, err := m.v.Read(vault.KeystoreFile(walletID))
	if err != nil {
		if coreerrors.Is(err, coreerrors.ErrNotFound) {
			return keystoreFile{}, coreerrors.ErrWalletNotFound
		}
		return keystoreFile{}, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return keystoreFile{}, coreerrors.Wrap(err, "parsing keystore")
	}
	return ks, nil
}

// Unlocked is the decrypted material handed to the session manager.
type Unlocked struct {
	Meta     WalletMeta
	Mnemonic string
	Account  *hdwallet.Account
}

// Unlock decrypts walletID's keystore with password and derives its account.
// It does not install a session; callers pass the result to internal/session.
func (m *Manager) Unlock(walletID, password string) (unlocked *Unlocked, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}
	meta, idx := findWallet(index, walletID)
	if idx == -1 {
		return nil, coreerrors.ErrWalletNotFound
	}

	ks, err := m.readKeystore(walletID)
	if err != nil {
		return nil, err
	}
	mnemonic, err := decryptMnemonic(password, ks.Encrypted)
	if err != nil {
		return nil, err
	}

	seed, err := hdwallet.MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, err
	}
	account, err := hdwallet.Derive(seed, parseNetwork(meta.Network), 0, ks.AddressIndex)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	index[idx].LastUsed = &now
	if err := m.saveIndex(index); err != nil {
		return nil, err
	}

	return &Unlocked{Meta: meta, Mnemonic: mnemonic, Account: account}, nil
}

// ExportMnemonic returns the plaintext mnemonic for walletID, gated on both
// the unlock password and an explicit confirmation token.
func (m *Manager) ExportMnemonic(walletID, password, confirm string) (string, error) {
	if confirm != ExportConfirmToken {
		return "", coreerrors.New("CONFIRMATION_REQUIRED", "export requires explicit confirmation")
	}
	unlocked, err := m.Unlock(walletID, password)
	if err != nil {
		return "", err
	}
	return unlocked.Mnemonic, nil
}

// DeleteWallet verifies password (by successful decryption), requires the
// delete confirmation token, then removes the wallet's keystore directory
// and index row. If walletID was the active wallet, cfg must be cleared by
// the caller (internal/config), since keystore has no config dependency.
func (m *Manager) DeleteWallet(walletID, password, confirm string) error {
	if confirm != DeleteConfirmToken {
		return coreerrors.New("CONFIRMATION_REQUIRED", "delete requires explicit confirmation")
	}
	if _, err := m.Unlock(walletID, password); err != nil {
		return err
	}

	index, err := m.loadIndex()
	if err != nil {
		return err
	}
	_, idx := findWallet(index, walletID)
	if idx == -1 {
		return coreerrors.ErrWalletNotFound
	}

	if err := m.v.RemoveDir(vault.WalletDir(walletID)); err != nil {
		return err
	}

	index = append(index[:idx], index[idx+1:]...)
	return m.saveIndex(index)
}

// RotatePassword re-encrypts walletID's keystore under newPassword, using a
// copy-verify-rollback sequence so a crash mid-rotation cannot corrupt the
// wallet: the backup file is only removed after the new keystore has been
// independently re-decrypted and confirmed correct.
func (m *Manager) RotatePassword(walletID, oldPassword, newPassword string) error {
	ks, err := m.readKeystore(walletID)
	if err != nil {
		return err
	}

	mnemonic, err := decryptMnemonic(oldPassword, ks.Encrypted)
	if err != nil {
		return err
	}

	if err := m.v.Copy(vault.KeystoreFile(walletID), vault.KeystoreBackupFile(walletID)); err != nil {
		return err
	}

	newBlob, err := encryptMnemonic(newPassword, mnemonic)
	if err != nil {
		return err
	}
	newKs := keystoreFile{Version: 1, Encrypted: newBlob, AddressIndex: ks.AddressIndex}
	data, err := json.MarshalIndent(newKs, "", "  ")
	if err != nil {
		return coreerrors.Wrap(err, "encoding rotated keystore")
	}
	if err := m.v.WriteAtomic(vault.KeystoreFile(walletID), data); err != nil {
		return err
	}

	verifyKs, err := m.readKeystore(walletID)
	if err != nil {
		return m.rollback(walletID)
	}
	if _, err := decryptMnemonic(newPassword, verifyKs.Encrypted); err != nil {
		return m.rollback(walletID)
	}

	return m.v.Remove(vault.KeystoreBackupFile(walletID))
}

func (m *Manager) rollback(walletID string) error {
	restoreErr := m.v.Copy(vault.KeystoreBackupFile(walletID), vault.KeystoreFile(walletID))
	_ = m.v.Remove(vault.KeystoreBackupFile(walletID))
	if restoreErr != nil {
		return coreerrors.Wrap(restoreErr, "rotation verify failed and rollback also failed")
	}
	return coreerrors.New("ROTATION_VERIFY_FAILED", "password rotation failed verification; rolled back")
}
