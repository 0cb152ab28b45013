package stxtx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
)

func TestSTXPostCondition_RejectsUnknownComparator(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 0}
	fees := feeresolver.New(stubFeeSource{}, nil)

	_, err := stxtx.CallContract(context.Background(), chain, fees, signer, stxtx.ContractCallOptions{
		ContractAddress: signer.Address,
		ContractName:    "pool",
		FunctionName:    "deposit",
		Fee:             "3000",
		PostConditions: []stxtx.PostCondition{
			stxtx.STXPostCondition{
				Principal:  stxtx.Principal{Kind: stxtx.PrincipalOrigin},
				Comparator: stxtx.Comparator("approximately"),
				AmountUSTX: 1,
			},
		},
	})
	assert.Error(t, err)
}

func TestFungiblePostCondition_EncodesWithoutError(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 0, txid: "ft-ok"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	assetOwner, err := hdwallet.Derive(make([]byte, 32), hdwallet.Testnet, 2, 0)
	require.NoError(t, err)

	result, err := stxtx.CallContract(context.Background(), chain, fees, signer, stxtx.ContractCallOptions{
		ContractAddress: signer.Address,
		ContractName:    "pool",
		FunctionName:    "deposit",
		Fee:             "3000",
		PostConditions: []stxtx.PostCondition{
			stxtx.FungiblePostCondition{
				Principal: stxtx.Principal{Kind: stxtx.PrincipalStandard, Address: signer.Address},
				Asset: stxtx.AssetInfo{
					ContractAddress: assetOwner.StacksAddress,
					ContractName:    "my-token",
					AssetName:       "my-token",
				},
				Comparator: stxtx.Gte,
				Amount:     100,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ft-ok", result.Txid)
}
