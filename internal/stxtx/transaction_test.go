package stxtx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/gateway"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
)

func testSigner(t *testing.T) (stxtx.Signer, *hdwallet.Account) {
	t.Helper()
	account, err := hdwallet.Derive(make([]byte, 32), hdwallet.Testnet, 0, 0)
	require.NoError(t, err)
	return stxtx.Signer{
		Network:    hdwallet.Testnet,
		Address:    account.StacksAddress,
		PrivateKey: account.StacksPrivateKey,
	}, account
}

type stubChain struct {
	nonce uint64
	txid  string
	err   error
}

func (s stubChain) GetAccountInfo(context.Context, string) (gateway.AccountInfo, error) {
	return gateway.AccountInfo{Nonce: s.nonce, Balance: "1000000"}, nil
}

func (s stubChain) BroadcastRawTx(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.txid, nil
}

type stubFeeSource struct{}

func (stubFeeSource) GetMempoolFees(context.Context) (gateway.MempoolFees, error) {
	return gateway.MempoolFees{
		TokenTransfer: gateway.FeePriority{LowPriority: 180, MediumPriority: 200, HighPriority: 300},
	}, nil
}

func TestTransfer_BuildsSignsAndBroadcasts(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 7, txid: "abcd1234"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	result, err := stxtx.Transfer(context.Background(), chain, fees, signer, signer.Address, 1000, stxtx.TransferOptions{
		Fee: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", result.Txid)
	assert.Equal(t, uint64(7), result.Nonce)
	assert.Equal(t, uint64(180), result.Fee)
	assert.NotEmpty(t, result.TxHex)
}

func TestTransfer_UsesOverriddenNonce(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 7, txid: "deadbeef"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	override := uint64(42)
	result, err := stxtx.Transfer(context.Background(), chain, fees, signer, signer.Address, 1000, stxtx.TransferOptions{
		Fee:   "100",
		Nonce: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), result.Nonce)
	assert.Equal(t, uint64(100), result.Fee)
}

func TestTransfer_RejectsNonZeroFeeWhenSponsored(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 0}
	fees := feeresolver.New(stubFeeSource{}, nil)

	_, err := stxtx.Transfer(context.Background(), chain, fees, signer, signer.Address, 1000, stxtx.TransferOptions{
		Fee:       "100",
		Sponsored: true,
	})
	assert.Error(t, err)
}

func TestTransfer_SponsoredProducesPartiallySignedTx(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 3}
	fees := feeresolver.New(stubFeeSource{}, nil)

	result, err := stxtx.Transfer(context.Background(), chain, fees, signer, signer.Address, 1000, stxtx.TransferOptions{
		Sponsored: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Txid, "sponsored tx is not broadcast until the sponsor countersigns")
	assert.NotEmpty(t, result.TxHex)
}

func TestTransfer_SponsoredWithSponsorSignerBroadcastsFullySigned(t *testing.T) {
	t.Parallel()
	origin, _ := testSigner(t)
	sponsorAccount, err := hdwallet.Derive(make([]byte, 32), hdwallet.Testnet, 1, 0)
	require.NoError(t, err)
	sponsor := stxtx.Signer{
		Network:    hdwallet.Testnet,
		Address:    sponsorAccount.StacksAddress,
		PrivateKey: sponsorAccount.StacksPrivateKey,
	}
	chain := stubChain{nonce: 2, txid: "sponsored-txid"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	result, err := stxtx.Transfer(context.Background(), chain, fees, origin, origin.Address, 500, stxtx.TransferOptions{
		Sponsored: true,
		Sponsor:   &sponsor,
	})
	require.NoError(t, err)
	assert.Equal(t, "sponsored-txid", result.Txid)
	assert.NotEmpty(t, result.TxHex)
}

func TestCallContract_WithPostConditions(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 1, txid: "feedface"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	result, err := stxtx.CallContract(context.Background(), chain, fees, signer, stxtx.ContractCallOptions{
		ContractAddress: signer.Address,
		ContractName:    "pool",
		FunctionName:    "deposit",
		Fee:             "3000",
		PostConditions: []stxtx.PostCondition{
			stxtx.STXPostCondition{
				Principal:  stxtx.Principal{Kind: stxtx.PrincipalOrigin},
				Comparator: stxtx.Eq,
				AmountUSTX: 1000,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "feedface", result.Txid)
}

func TestDeployContract(t *testing.T) {
	t.Parallel()
	signer, _ := testSigner(t)
	chain := stubChain{nonce: 0, txid: "0011"}
	fees := feeresolver.New(stubFeeSource{}, nil)

	result, err := stxtx.DeployContract(context.Background(), chain, fees, signer, stxtx.DeployContractOptions{
		ContractName: "my-contract",
		CodeBody:     "(define-public (noop) (ok true))",
		Fee:          "10000",
	})
	require.NoError(t, err)
	assert.Equal(t, "0011", result.Txid)
}

func TestBroadcastSigned(t *testing.T) {
	t.Parallel()
	chain := stubChain{txid: "already-signed-txid"}
	result, err := stxtx.BroadcastSigned(context.Background(), chain, "0x00...")
	require.NoError(t, err)
	assert.Equal(t, "already-signed-txid", result.Txid)
}

func TestParseClarityArgShorthand(t *testing.T) {
	t.Parallel()

	val, err := stxtx.ParseClarityArgShorthand("uint:100")
	require.NoError(t, err)
	assert.NotEmpty(t, val.Encode())

	_, err = stxtx.ParseClarityArgShorthand("not-a-valid-expression")
	assert.Error(t, err)
}

func TestTxidFromRawHex_IsDeterministic(t *testing.T) {
	t.Parallel()
	txid1, err := stxtx.TxidFromRawHex("0xdeadbeef")
	require.NoError(t, err)
	txid2, err := stxtx.TxidFromRawHex("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, txid1, txid2, "0x prefix must not affect the computed txid")
}
