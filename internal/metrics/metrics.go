// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Gateway RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Wallet/session operation metrics
	walletOpsTotal  atomic.Int64
	walletOpsErrors atomic.Int64

	// Per-chain gateway calls
	btcRPCCalls    atomic.Int64
	stacksRPCCalls atomic.Int64

	// x402 payment flow
	x402PaymentsTotal atomic.Int64
	x402Recoveries    atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records a gateway call with its duration and success status.
func (m *Metrics) RecordRPCCall(chain string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}

	switch chain {
	case "btc":
		m.btcRPCCalls.Add(1)
	case "stacks":
		m.stacksRPCCalls.Add(1)
	}
}

// RecordWalletOp records a wallet or session operation.
func (m *Metrics) RecordWalletOp(err error) {
	m.walletOpsTotal.Add(1)
	if err != nil {
		m.walletOpsErrors.Add(1)
	}
}

// RecordX402Payment records one x402 challenge-response payment, and whether
// it required the recovery-via-polling path.
func (m *Metrics) RecordX402Payment(recovered bool) {
	m.x402PaymentsTotal.Add(1)
	if recovered {
		m.x402Recoveries.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal     int64
	RPCErrorsTotal    int64
	RPCLatencyNanos   int64
	WalletOpsTotal    int64
	WalletOpsErrors   int64
	BTCRPCCalls       int64
	StacksRPCCalls    int64
	X402PaymentsTotal int64
	X402Recoveries    int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:     m.rpcCallsTotal.Load(),
		RPCErrorsTotal:    m.rpcErrorsTotal.Load(),
		RPCLatencyNanos:   m.rpcLatencyNanos.Load(),
		WalletOpsTotal:    m.walletOpsTotal.Load(),
		WalletOpsErrors:   m.walletOpsErrors.Load(),
		BTCRPCCalls:       m.btcRPCCalls.Load(),
		StacksRPCCalls:    m.stacksRPCCalls.Load(),
		X402PaymentsTotal: m.x402PaymentsTotal.Load(),
		X402Recoveries:    m.x402Recoveries.Load(),
	}
}

// RPCCallsTotal returns the total number of gateway calls made.
func (m *Metrics) RPCCallsTotal() int64 {
	return m.rpcCallsTotal.Load()
}

// RPCErrorsTotal returns the total number of gateway call errors.
func (m *Metrics) RPCErrorsTotal() int64 {
	return m.rpcErrorsTotal.Load()
}

// RPCLatencyAvgMs returns the average gateway call latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.rpcLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// Reset resets all metrics to zero. Useful for testing.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.walletOpsTotal.Store(0)
	m.walletOpsErrors.Store(0)
	m.btcRPCCalls.Store(0)
	m.stacksRPCCalls.Store(0)
	m.x402PaymentsTotal.Store(0)
	m.x402Recoveries.Store(0)
}
