package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/config"
	"github.com/aibtcdev/aibtc-core/internal/keystore"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/vault"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.New(t.TempDir())
	require.NoError(t, err)
	return v
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Nil(t, cfg.ActiveWalletID)
	assert.Equal(t, config.DefaultAutoLockTimeoutMinutes, cfg.AutoLockTimeoutMinutes)
	assert.Empty(t, cfg.HiroAPIKey)
	assert.Empty(t, cfg.StacksAPIURL)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)

	cfg := config.Defaults()
	cfg.AutoLockTimeoutMinutes = 15
	cfg.HiroAPIKey = "hiro-key"
	cfg.StacksAPIURL = "https://api.example.com"
	id := "11111111-1111-1111-1111-111111111111"
	cfg.ActiveWalletID = &id

	require.NoError(t, config.Save(v, cfg))

	loaded, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSetActiveWallet_ClearsWithEmptyID(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	cfg := config.Defaults()

	require.NoError(t, config.SetActiveWallet(v, cfg, ""))
	assert.Nil(t, cfg.ActiveWalletID)
}

func TestSetActiveWallet_RequiresExistingWallet(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	cfg := config.Defaults()

	err := config.SetActiveWallet(v, cfg, "does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, coreerrors.ErrNotFound)
}

func TestSetActiveWallet_Succeeds(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	cfg := config.Defaults()

	mgr := keystore.New(v)
	result, err := mgr.CreateWallet("main", "correct horse battery staple", hdwallet.Testnet)
	require.NoError(t, err)

	require.NoError(t, config.SetActiveWallet(v, cfg, result.Meta.ID))
	require.NotNil(t, cfg.ActiveWalletID)
	assert.Equal(t, result.Meta.ID, *cfg.ActiveWalletID)

	reloaded, err := config.Load(v)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ActiveWalletID)
	assert.Equal(t, result.Meta.ID, *reloaded.ActiveWalletID)
}

func TestSetAutoLockTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		minutes int
		wantErr bool
	}{
		{"disables with zero", 0, false},
		{"positive value", 30, false},
		{"negative rejected", -1, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := newTestVault(t)
			cfg := config.Defaults()

			err := config.SetAutoLockTimeout(v, cfg, tc.minutes)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, coreerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.minutes, cfg.AutoLockTimeoutMinutes)
		})
	}
}

func TestSetHiroAPIKey(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	cfg := config.Defaults()

	require.NoError(t, config.SetHiroAPIKey(v, cfg, "sk_live_abc"))
	assert.Equal(t, "sk_live_abc", cfg.HiroAPIKey)

	reloaded, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_abc", reloaded.HiroAPIKey)
}

func TestStacksAPIURLFor(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	assert.Equal(t, config.DefaultHiroMainnetURL, cfg.StacksAPIURLFor("mainnet"))
	assert.Equal(t, config.DefaultHiroTestnetURL, cfg.StacksAPIURLFor("testnet"))

	cfg.StacksAPIURL = "https://custom.example.com"
	assert.Equal(t, "https://custom.example.com", cfg.StacksAPIURLFor("mainnet"))
	assert.Equal(t, "https://custom.example.com", cfg.StacksAPIURLFor("testnet"))
}

func TestMempoolAPIURLFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, config.DefaultMempoolMainnetURL, config.MempoolAPIURLFor("mainnet"))
	assert.Equal(t, config.DefaultMempoolTestnetURL, config.MempoolAPIURLFor("testnet"))
}
