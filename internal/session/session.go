// Package session holds the single in-memory unlocked wallet for a process.
// It never persists anything: a session exists only in RAM and is wiped on
// lock, expiry, or process exit.
package session

import (
	"sync"
	"time"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Account is the plaintext key material for the active wallet. Private-key
// fields are zeroized by Manager.Lock; callers must not retain references to
// them past a lock/expiry check.
type Account struct {
	WalletID string
	Network  hdwallet.Network

	StxAddress    string
	StxPrivateKey []byte

	BtcAddress    string
	BtcPrivateKey []byte
	BtcPublicKey  []byte

	TaprootAddress        string
	TaprootPrivateKey     []byte
	TaprootInternalPubKey []byte
}

// Addresses is the public-only subset of an Account, safe to log or print.
type Addresses struct {
	StxAddress     string
	BtcAddress     string
	TaprootAddress string
}

// Manager is the session holder for one process. Construct with New and
// share the single instance, rather than relying on a package-level
// singleton, so tests (and any future multi-profile CLI) can run independent
// sessions side by side.
type Manager struct {
	mu        sync.Mutex
	account   *Account
	expiresAt *time.Time
}

// New constructs an empty, locked Manager.
func New() *Manager {
	return &Manager{}
}

// IsUnlocked reports whether a non-expired session is present, lazily
// expiring it as a side effect if the TTL has elapsed. This check is
// authoritative: a background watchdog may also call Lock on a timer, but
// nothing here depends on that timer having already fired.
func (m *Manager) IsUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkLiveLocked()
}

func (m *Manager) checkLiveLocked() bool {
	if m.account == nil {
		return false
	}
	if m.expiresAt != nil && time.Now().After(*m.expiresAt) {
		m.zeroizeLocked()
		return false
	}
	return true
}

// GetAccount returns the active account, or nil if locked/expired.
func (m *Manager) GetAccount() *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.checkLiveLocked() {
		return nil
	}
	return m.account
}

// GetAddresses returns the public-only view of the active account.
func (m *Manager) GetAddresses() *Addresses {
	account := m.GetAccount()
	if account == nil {
		return nil
	}
	return &Addresses{
		StxAddress:     account.StxAddress,
		BtcAddress:     account.BtcAddress,
		TaprootAddress: account.TaprootAddress,
	}
}

// UnlockFromKeystore installs account as the active session, replacing (and
// zeroizing) any existing one. ttl <= 0 means the session never expires on
// its own.
func (m *Manager) UnlockFromKeystore(account *Account, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.zeroizeLocked()
	m.account = account

	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		m.expiresAt = &expiresAt
	} else {
		m.expiresAt = nil
	}
}

// Lock zeroizes all private-key buffers and drops the session.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zeroizeLocked()
}

func (m *Manager) zeroizeLocked() {
	if m.account == nil {
		return
	}
	zeroBytes(m.account.StxPrivateKey)
	zeroBytes(m.account.BtcPrivateKey)
	zeroBytes(m.account.TaprootPrivateKey)
	m.account = nil
	m.expiresAt = nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RequireUnlocked returns the active account or coreerrors.ErrWalletLocked.
func (m *Manager) RequireUnlocked() (*Account, error) {
	account := m.GetAccount()
	if account == nil {
		return nil, coreerrors.ErrWalletLocked
	}
	return account, nil
}

// FromKeystoreAccount converts a derived hdwallet.Account into a session
// Account bound to walletID/network.
func FromKeystoreAccount(walletID string, network hdwallet.Network, derived *hdwallet.Account) (*Account, error) {
	btcPubKey, err := cryptoprim.PublicKeyFromPrivate(derived.BitcoinPrivateKey)
	if err != nil {
		return nil, err
	}
	taprootInternalPubKey, err := cryptoprim.XOnlyPubKey(derived.TaprootPrivateKey)
	if err != nil {
		return nil, err
	}

	return &Account{
		WalletID:              walletID,
		Network:               network,
		StxAddress:            derived.StacksAddress,
		StxPrivateKey:         derived.StacksPrivateKey,
		BtcAddress:            derived.BitcoinAddress,
		BtcPrivateKey:         derived.BitcoinPrivateKey,
		BtcPublicKey:          btcPubKey,
		TaprootAddress:        derived.TaprootAddress,
		TaprootPrivateKey:     derived.TaprootPrivateKey,
		TaprootInternalPubKey: taprootInternalPubKey,
	}, nil
}
