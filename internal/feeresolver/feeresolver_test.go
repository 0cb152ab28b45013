package feeresolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/gateway"
)

type stubSource struct {
	fees gateway.MempoolFees
	err  error
}

func (s stubSource) GetMempoolFees(context.Context) (gateway.MempoolFees, error) {
	return s.fees, s.err
}

func TestResolver_Resolve_EmptyExpressionAutoEstimates(t *testing.T) {
	t.Parallel()
	r := feeresolver.New(stubSource{}, nil)

	fee, explicit, err := r.Resolve(context.Background(), "", feeresolver.TokenTransfer)
	require.NoError(t, err)
	assert.False(t, explicit)
	assert.Zero(t, fee)
}

func TestResolver_Resolve_NumericLiteralPassesThroughUnclamped(t *testing.T) {
	t.Parallel()
	r := feeresolver.New(stubSource{}, nil)

	fee, explicit, err := r.Resolve(context.Background(), "50", feeresolver.TokenTransfer)
	require.NoError(t, err)
	assert.True(t, explicit)
	assert.Equal(t, uint64(50), fee)
}

func TestResolver_Resolve_PresetClampsToFloor(t *testing.T) {
	t.Parallel()
	fees := gateway.MempoolFees{
		TokenTransfer: gateway.FeePriority{LowPriority: 1, MediumPriority: 2, HighPriority: 3},
	}
	r := feeresolver.New(stubSource{fees: fees}, nil)

	fee, explicit, err := r.Resolve(context.Background(), "low", feeresolver.TokenTransfer)
	require.NoError(t, err)
	assert.True(t, explicit)
	assert.Equal(t, uint64(180), fee, "below floor must clamp up to 180")
}

func TestResolver_Resolve_PresetClampsToCeiling(t *testing.T) {
	t.Parallel()
	fees := gateway.MempoolFees{
		TokenTransfer: gateway.FeePriority{LowPriority: 1, MediumPriority: 2, HighPriority: 999_999},
	}
	r := feeresolver.New(stubSource{fees: fees}, nil)

	fee, _, err := r.Resolve(context.Background(), "high", feeresolver.TokenTransfer)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000), fee, "above ceiling must clamp down to 3000")
}

func TestResolver_Resolve_FallsBackOnMempoolFailure(t *testing.T) {
	t.Parallel()
	r := feeresolver.New(stubSource{err: errors.New("unreachable")}, nil)

	lowFee, _, err := r.Resolve(context.Background(), "low", feeresolver.ContractCall)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000), lowFee) // floor * 1

	mediumFee, _, err := r.Resolve(context.Background(), "medium", feeresolver.ContractCall)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_000), mediumFee) // floor * 2

	highFee, _, err := r.Resolve(context.Background(), "high", feeresolver.ContractCall)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_000), highFee) // floor * 3
}

func TestResolver_Resolve_RejectsUnknownExpression(t *testing.T) {
	t.Parallel()
	r := feeresolver.New(stubSource{}, nil)

	_, _, err := r.Resolve(context.Background(), "urgent", feeresolver.TokenTransfer)
	assert.Error(t, err)
}

func TestResolver_Resolve_EachTxTypeUsesItsOwnFloor(t *testing.T) {
	t.Parallel()
	r := feeresolver.New(stubSource{err: errors.New("unreachable")}, nil)

	for txType, wantFloor := range map[feeresolver.TxType]uint64{
		feeresolver.TokenTransfer: 180,
		feeresolver.ContractCall:  3_000,
		feeresolver.SmartContract: 10_000,
		feeresolver.All:           180,
	} {
		fee, _, err := r.Resolve(context.Background(), "low", txType)
		require.NoError(t, err)
		assert.Equal(t, wantFloor, fee, "txType %s", txType)
	}
}
