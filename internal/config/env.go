package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// ErrInsecureAPIURL indicates an API URL override is using plaintext HTTP.
var ErrInsecureAPIURL = errors.New("API URL must use HTTPS")

// Environment variable names the core reads directly.
const (
	EnvNetwork        = "NETWORK"
	EnvHiroAPIKey     = "HIRO_API_KEY"       //nolint:gosec // G101: env var name, not a credential
	EnvClientMnemonic = "CLIENT_MNEMONIC"    //nolint:gosec // G101: env var name, not a credential
	EnvStacksAPIURL   = "STACKS_API_URL"
)

// NetworkFromEnv resolves the active network from NETWORK, defaulting to
// "testnet" when unset or unrecognized.
func NetworkFromEnv() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvNetwork)))
	if v == "mainnet" {
		return "mainnet"
	}
	return "testnet"
}

// ApplyEnvironment layers HIRO_API_KEY and STACKS_API_URL over cfg's
// persisted values; the environment always wins for the lifetime of the
// process but neither is written back to config.json.
func ApplyEnvironment(cfg *Config) error {
	if v := os.Getenv(EnvHiroAPIKey); v != "" {
		cfg.HiroAPIKey = v
	}

	if v := os.Getenv(EnvStacksAPIURL); v != "" {
		sanitized := sanitize.URL(strings.TrimSpace(v))
		if err := validateAPIURL(sanitized); err != nil {
			return err
		}
		cfg.StacksAPIURL = sanitized
	}

	return nil
}

// ClientMnemonic returns CLIENT_MNEMONIC and whether it was set. When set,
// wallet import uses it instead of prompting for a mnemonic. No other
// operation reads it; it does not stand in for an unlocked wallet session.
func ClientMnemonic() (string, bool) {
	v := os.Getenv(EnvClientMnemonic)
	return v, v != ""
}

// validateAPIURL requires HTTPS (or localhost, for development).
func validateAPIURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return coreerrors.Wrap(err, "parsing %s", EnvStacksAPIURL)
	}
	if u.Scheme == "https" {
		return nil
	}
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return nil
	}
	return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
		"reason": fmt.Sprintf("%v (got %s://%s)", ErrInsecureAPIURL, u.Scheme, u.Host),
	})
}
