// Package feeresolver turns a caller-supplied fee expression ("low",
// "medium", "high", or a literal μSTX integer) into a concrete fee for a
// Stacks transaction, clamping mempool-derived presets into a safe range per
// transaction type and falling back to a fixed multiple of the floor when the
// mempool fee-rate endpoint is unreachable.
package feeresolver

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aibtcdev/aibtc-core/internal/gateway"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// TxType is a Stacks payload kind, used to select a clamp range.
type TxType string

// Transaction types recognized by the clamp table.
const (
	TokenTransfer TxType = "token_transfer"
	ContractCall  TxType = "contract_call"
	SmartContract TxType = "smart_contract"
	All           TxType = "all"
)

// Priority is a named mempool fee-rate bucket.
type Priority string

// Named priorities accepted in a fee expression.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// clampRange bounds a resolved fee in μSTX for a given TxType.
type clampRange struct {
	floor   uint64
	ceiling uint64
}

var clampTable = map[TxType]clampRange{
	TokenTransfer: {floor: 180, ceiling: 3_000},
	ContractCall:  {floor: 3_000, ceiling: 100_000},
	SmartContract: {floor: 10_000, ceiling: 100_000},
	All:           {floor: 180, ceiling: 100_000},
}

// MempoolFeeSource fetches current mempool fee-rate estimates. gateway.StacksClient
// satisfies this.
type MempoolFeeSource interface {
	GetMempoolFees(ctx context.Context) (gateway.MempoolFees, error)
}

// Resolver resolves fee expressions against a mempool fee source.
type Resolver struct {
	source MempoolFeeSource
	logger *slog.Logger
}

// New builds a Resolver. logger may be nil, in which case slog.Default() is
// used for the fallback warning.
func New(source MempoolFeeSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve turns expr into a concrete μSTX fee. An empty expr returns (0,
// false, nil), signaling the caller should auto-estimate at build time.
// A numeric literal is returned unchanged, uninterpreted by txType. A named
// preset is resolved against live mempool fees (or the fallback table on
// fetch failure) and clamped to txType's range.
func (r *Resolver) Resolve(ctx context.Context, expr string, txType TxType) (uint64, bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, false, nil
	}

	rng, ok := clampTable[txType]
	if !ok {
		return 0, false, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"txType": string(txType),
		})
	}

	if literal, err := strconv.ParseUint(expr, 10, 64); err == nil {
		return literal, true, nil
	}

	priority := Priority(strings.ToLower(expr))
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return 0, false, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"feeExpression": expr,
		})
	}

	rate, err := r.presetRate(ctx, priority, txType, rng)
	if err != nil {
		return 0, false, err
	}
	return clamp(rate, rng), true, nil
}

func (r *Resolver) presetRate(ctx context.Context, priority Priority, txType TxType, rng clampRange) (uint64, error) {
	fees, err := r.source.GetMempoolFees(ctx)
	if err != nil {
		r.logger.Warn("mempool fee fetch failed, using fallback clamp multiple",
			"txType", string(txType), "priority", string(priority), "error", err)
		return fallbackRate(priority, rng), nil
	}
	return uint64(priorityValue(fees, txType, priority)), nil
}

// fallbackRate applies floor×{1,2,3} for {low,medium,high} when the mempool
// API cannot be reached.
func fallbackRate(priority Priority, rng clampRange) uint64 {
	switch priority {
	case PriorityLow:
		return rng.floor * 1
	case PriorityMedium:
		return rng.floor * 2
	case PriorityHigh:
		return rng.floor * 3
	default:
		return rng.floor
	}
}

func priorityValue(fees gateway.MempoolFees, txType TxType, priority Priority) float64 {
	var p gateway.FeePriority
	switch txType {
	case TokenTransfer:
		p = fees.TokenTransfer
	case ContractCall:
		p = fees.ContractCall
	case SmartContract, All:
		p = fees.SmartContract
	}
	switch priority {
	case PriorityLow:
		return p.LowPriority
	case PriorityHigh:
		return p.HighPriority
	default:
		return p.MediumPriority
	}
}

func clamp(v uint64, rng clampRange) uint64 {
	if v < rng.floor {
		return rng.floor
	}
	if v > rng.ceiling {
		return rng.ceiling
	}
	return v
}
