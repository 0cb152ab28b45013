// Package config manages the application configuration file
// ($HOME/.aibtc/config.json): the active wallet pointer, the auto-lock
// policy, and optional Hiro/Stacks API overrides.
package config

import (
	"encoding/json"

	"github.com/aibtcdev/aibtc-core/internal/keystore"
	"github.com/aibtcdev/aibtc-core/internal/vault"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// Config is the on-disk shape of config.json, matching the app config data
// model verbatim: version, the active wallet pointer (nil when no wallet has
// been selected), the auto-lock timeout, and optional API overrides.
type Config struct {
	Version                int     `json:"version"`
	ActiveWalletID         *string `json:"activeWalletId"`
	AutoLockTimeoutMinutes int     `json:"autoLockTimeoutMinutes"`
	HiroAPIKey             string  `json:"hiroApiKey,omitempty"`
	StacksAPIURL           string  `json:"stacksApiUrl,omitempty"`
}

// Defaults returns the configuration written on first use: no active wallet,
// auto-lock disabled (0 means no timeout), no API overrides.
func Defaults() *Config {
	return &Config{
		Version:                CurrentVersion,
		ActiveWalletID:         nil,
		AutoLockTimeoutMinutes: DefaultAutoLockTimeoutMinutes,
	}
}

// Load reads config.json from the vault, returning Defaults() if it does not
// exist yet.
func Load(v *vault.Vault) (*Config, error) {
	data, err := v.Read(vault.ConfigFile)
	if err != nil {
		if coreerrors.Is(err, coreerrors.ErrNotFound) {
			return Defaults(), nil
		}
		return nil, err
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, coreerrors.Wrap(err, "parsing config.json")
	}
	return cfg, nil
}

// Save writes cfg to config.json atomically.
func Save(v *vault.Vault, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return coreerrors.Wrap(err, "encoding config.json")
	}
	return v.WriteAtomic(vault.ConfigFile, data)
}

// SetActiveWallet switches the active wallet, enforcing the invariant that a
// non-empty walletID must already exist in the wallet index. An empty
// walletID clears the active wallet.
func SetActiveWallet(v *vault.Vault, cfg *Config, walletID string) error {
	if walletID == "" {
		cfg.ActiveWalletID = nil
		return Save(v, cfg)
	}

	wallets, err := keystore.New(v).ListWallets()
	if err != nil {
		return err
	}
	found := false
	for _, w := range wallets {
		if w.ID == walletID {
			found = true
			break
		}
	}
	if !found {
		return coreerrors.WithDetails(coreerrors.ErrNotFound, map[string]string{"walletId": walletID})
	}

	id := walletID
	cfg.ActiveWalletID = &id
	return Save(v, cfg)
}

// SetAutoLockTimeout updates the auto-lock timeout (minutes, 0 disables it)
// and persists the change.
func SetAutoLockTimeout(v *vault.Vault, cfg *Config, minutes int) error {
	if minutes < 0 {
		return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"autoLockTimeoutMinutes": "must be >= 0",
		})
	}
	cfg.AutoLockTimeoutMinutes = minutes
	return Save(v, cfg)
}

// SetHiroAPIKey updates the Hiro API key override and persists the change.
func SetHiroAPIKey(v *vault.Vault, cfg *Config, key string) error {
	cfg.HiroAPIKey = key
	return Save(v, cfg)
}
