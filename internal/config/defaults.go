package config

// DefaultHiroMainnetURL and DefaultHiroTestnetURL are the Stacks API base
// URLs used when config.json and STACKS_API_URL both leave it unset.
const (
	DefaultHiroMainnetURL = "https://api.hiro.so"
	DefaultHiroTestnetURL = "https://api.testnet.hiro.so"

	// DefaultMempoolMainnetURL and DefaultMempoolTestnetURL are the Bitcoin
	// gateway base URLs for the same two networks.
	DefaultMempoolMainnetURL = "https://mempool.space/api"
	DefaultMempoolTestnetURL = "https://mempool.space/testnet/api"

	// DefaultAutoLockTimeoutMinutes is the auto-lock timeout written on
	// first use; 0 means "no timeout".
	DefaultAutoLockTimeoutMinutes = 0
)

// StacksAPIURLFor returns cfg's override if set, otherwise the network's
// default Hiro endpoint.
func (c *Config) StacksAPIURLFor(network string) string {
	if c.StacksAPIURL != "" {
		return c.StacksAPIURL
	}
	if network == "mainnet" {
		return DefaultHiroMainnetURL
	}
	return DefaultHiroTestnetURL
}

// MempoolAPIURLFor returns the default Bitcoin gateway endpoint for network.
func MempoolAPIURLFor(network string) string {
	if network == "mainnet" {
		return DefaultMempoolMainnetURL
	}
	return DefaultMempoolTestnetURL
}
