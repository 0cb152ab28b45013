package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/gateway"
)

func TestStacksClient_GetAccountInfo(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/SP000000000000000000002Q6VF78?proof=0", r.URL.Path+"?"+r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"1000000","nonce":5}`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "")
	info, err := client.GetAccountInfo(context.Background(), "SP000000000000000000002Q6VF78")
	require.NoError(t, err)
	assert.Equal(t, "1000000", info.Balance)
	assert.Equal(t, uint64(5), info.Nonce)
}

func TestStacksClient_GetMempoolFees(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token_transfer":{"low_priority":1,"medium_priority":2,"high_priority":3},
			"contract_call":{"low_priority":4,"medium_priority":5,"high_priority":6},
			"smart_contract":{"low_priority":7,"medium_priority":8,"high_priority":9}
		}`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "")
	fees, err := client.GetMempoolFees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, fees.TokenTransfer.MediumPriority)
	assert.Equal(t, 9.0, fees.SmartContract.HighPriority)
}

func TestStacksClient_CallReadOnly_PropagatesContractFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"okay":false,"cause":"no such function"}`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "")
	_, err := client.CallReadOnly(context.Background(), "SP000000000000000000002Q6VF78", "pool", "get-balance", nil, "SP000000000000000000002Q6VF78")
	assert.Error(t, err)
}

func TestStacksClient_GetTransactionStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/tx/0xabc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tx_status":"success","block_height":1000}`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "")
	status, err := client.GetTransactionStatus(context.Background(), "0xabc123")
	require.NoError(t, err)
	assert.Equal(t, "success", status.TxStatus)
	assert.Equal(t, uint64(1000), status.BlockHeight)
}

func TestStacksClient_BroadcastRawTx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"0xdeadbeef"`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "")
	txid, err := client.BroadcastRawTx(context.Background(), "0x0100000000")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", txid)
}

func TestStacksClient_SetsAPIKeyHeader(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"0","nonce":0}`))
	}))
	defer srv.Close()

	client := gateway.NewStacksClient(srv.URL, "secret-key")
	_, err := client.GetAccountInfo(context.Background(), "SP000000000000000000002Q6VF78")
	require.NoError(t, err)
}
