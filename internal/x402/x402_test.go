package x402_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aibtcdev/aibtc-core/internal/gateway"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
	"github.com/aibtcdev/aibtc-core/internal/x402"
)

type fakeChain struct {
	nonce     uint64
	broadcast []string
	status    gateway.TxStatus
}

func (f *fakeChain) GetAccountInfo(_ context.Context, _ string) (gateway.AccountInfo, error) {
	return gateway.AccountInfo{Nonce: f.nonce}, nil
}

func (f *fakeChain) BroadcastRawTx(_ context.Context, txHex string) (string, error) {
	f.broadcast = append(f.broadcast, txHex)
	txid, err := stxtx.TxidFromRawHex(txHex)
	if err != nil {
		return "", err
	}
	return txid, nil
}

func (f *fakeChain) GetTransactionStatus(_ context.Context, _ string) (gateway.TxStatus, error) {
	return f.status, nil
}

func testSigner() stxtx.Signer {
	sk := make([]byte, 32)
	sk[31] = 9
	return stxtx.Signer{Network: hdwallet.Testnet, Address: "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", PrivateKey: sk}
}

func encodeHeader(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDoSkipsPaymentWhenNot402(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &x402.Client{Chain: &fakeChain{}}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	result, err := client.Do(context.Background(), req, testSigner())
	require.NoError(t, err)
	require.False(t, result.Paid)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Equal(t, "ok", string(result.Body))
}

func TestDoPaysAndSettles(t *testing.T) {
	paymentRequired := x402.PaymentRequired{
		X402Version: x402.ProtocolVersion,
		Resource:    x402.Resource{URL: "/paid"},
		Accepts: []x402.Accept{{
			Scheme: "exact", Network: "stacks-testnet", Amount: "1000",
			Asset: "stx", PayTo: "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", MaxTimeoutSeconds: 60,
		}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(x402.HeaderPaymentSignature) == "" {
			w.Header().Set(x402.HeaderPaymentRequired, encodeHeader(t, paymentRequired))
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		settlement := x402.SettlementResponse{Success: true, Network: "stacks-testnet"}
		w.Header().Set(x402.HeaderPaymentResponse, encodeHeader(t, settlement))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("paid content"))
	}))
	defer srv.Close()

	chain := &fakeChain{}
	client := &x402.Client{Chain: chain}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	result, err := client.Do(context.Background(), req, testSigner())
	require.NoError(t, err)
	require.True(t, result.Paid)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.NotNil(t, result.Settlement)
	require.True(t, result.Settlement.Success)
	require.Equal(t, "paid content", string(result.Body))
}

func TestDoRecoversOnServerError(t *testing.T) {
	paymentRequired := x402.PaymentRequired{
		X402Version: x402.ProtocolVersion,
		Resource:    x402.Resource{URL: "/paid"},
		Accepts: []x402.Accept{{
			Scheme: "exact", Network: "stacks-testnet", Amount: "500",
			Asset: "stx", PayTo: "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", MaxTimeoutSeconds: 60,
		}},
	}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(x402.HeaderPaymentSignature) == "" {
			w.Header().Set(x402.HeaderPaymentRequired, encodeHeader(t, paymentRequired))
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	chain := &fakeChain{status: gateway.TxStatus{TxStatus: "success"}}
	client := &x402.Client{Chain: chain, PollMaxMs: 50, PollIntervalMs: 10}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	result, err := client.Do(context.Background(), req, testSigner())
	require.NoError(t, err)
	require.True(t, result.Paid)
	require.NotNil(t, result.Recovery)
	require.Equal(t, "success", result.Recovery.Status)
	require.Equal(t, 1, calls)
}
