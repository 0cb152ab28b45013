// Package btctx builds, signs, and serializes Bitcoin transactions: P2WPKH
// payments and taproot ordinal commit/reveal pairs.
package btctx

import (
	"github.com/btcsuite/btcd/chaincfg"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// DustLimitP2WPKH is the minimum non-dust output value for a P2WPKH output.
const DustLimitP2WPKH = 546

// DustLimitP2TR is the minimum non-dust output value for a P2TR output.
const DustLimitP2TR = 330

func chainParamsForHRP(hrp string) (*chaincfg.Params, error) {
	switch hrp {
	case "bc":
		return &chaincfg.MainNetParams, nil
	case "tb":
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, coreerrors.New("INVALID_NETWORK", "unsupported bech32 hrp: "+hrp)
	}
}
