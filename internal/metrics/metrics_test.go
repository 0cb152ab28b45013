package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

func TestMetrics_RecordRPCCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("btc", 100*time.Millisecond, nil)
	assert.Equal(t, int64(1), m.RPCCallsTotal())
	assert.Equal(t, int64(0), m.RPCErrorsTotal())
	assert.Equal(t, int64(1), m.btcRPCCalls.Load())

	m.RecordRPCCall("stacks", 50*time.Millisecond, coreerrors.ErrAPI)
	assert.Equal(t, int64(2), m.RPCCallsTotal())
	assert.Equal(t, int64(1), m.RPCErrorsTotal())
	assert.Equal(t, int64(1), m.stacksRPCCalls.Load())
}

func TestMetrics_RecordWalletOp(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordWalletOp(nil)
	m.RecordWalletOp(coreerrors.ErrGeneral)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.WalletOpsTotal)
	assert.Equal(t, int64(1), snap.WalletOpsErrors)
}

func TestMetrics_RecordX402Payment(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordX402Payment(false)
	m.RecordX402Payment(true)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.X402PaymentsTotal)
	assert.Equal(t, int64(1), snap.X402Recoveries)
}

func TestMetrics_RPCLatencyAvg(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	assert.InDelta(t, 0.0, m.RPCLatencyAvgMs(), 0.001)

	m.RecordRPCCall("btc", 100*time.Millisecond, nil)
	m.RecordRPCCall("btc", 200*time.Millisecond, nil)

	avg := m.RPCLatencyAvgMs()
	assert.InDelta(t, 150.0, avg, 1.0)
}

func TestMetrics_Snapshot(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("stacks", time.Millisecond, nil)
	m.RecordWalletOp(nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.RPCCallsTotal)
	assert.Equal(t, int64(1), snap.WalletOpsTotal)
	assert.Equal(t, int64(1), snap.StacksRPCCalls)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("btc", time.Millisecond, nil)
	m.RecordWalletOp(nil)

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.RPCCallsTotal)
	assert.Equal(t, int64(0), snap.WalletOpsTotal)
}

func TestGlobal(t *testing.T) {
	assert.NotNil(t, Global)
	Global.Reset()
}
