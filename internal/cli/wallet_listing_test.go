package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/keystore"
)

func TestWalletListing_String(t *testing.T) {
	listing := walletListing{
		{ID: "abc-123", Name: "main", Network: "testnet", StxAddress: "ST1...", BtcAddress: "tb1..."},
	}
	rendered := listing.String()
	assert.Contains(t, rendered, "main")
	assert.Contains(t, rendered, "ST1...")
	assert.Contains(t, rendered, "tb1...")
}

func TestWalletListing_MarshalJSON(t *testing.T) {
	listing := walletListing{
		{ID: "abc-123", Name: "main", Network: "mainnet"},
	}
	raw, err := json.Marshal(listing)
	require.NoError(t, err)

	var decoded []keystore.WalletMeta
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "main", decoded[0].Name)
}

func TestWalletListing_Empty(t *testing.T) {
	listing := walletListing{}
	assert.Contains(t, listing.String(), "ID")

	raw, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
