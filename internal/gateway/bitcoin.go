// Package gateway implements typed HTTP clients for the mempool.space-style
// Bitcoin API and the Hiro-style Stacks API, the only two remote collaborators
// the core talks to. Every response shape is a closed Go struct; unknown
// fields from the server are silently ignored (the default for
// encoding/json), so a server-side addition never breaks this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aibtcdev/aibtc-core/internal/metrics"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 4 << 20 // 4 MiB
)

// UTXOStatus is the confirmation status of a UTXO.
type UTXOStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

// UTXO is one spendable output as reported by the mempool.space UTXO endpoint.
type UTXO struct {
	TxID   string     `json:"txid"`
	Vout   uint32     `json:"vout"`
	Value  int64      `json:"value"`
	Status UTXOStatus `json:"status"`
}

// FeeEstimates mirrors mempool.space's /v1/fees/recommended response,
// sat/vByte for each confirmation-target bucket.
type FeeEstimates struct {
	FastestFee  float64 `json:"fastestFee"`
	HalfHourFee float64 `json:"halfHourFee"`
	HourFee     float64 `json:"hourFee"`
	EconomyFee  float64 `json:"economyFee"`
	MinimumFee  float64 `json:"minimumFee"`
}

// BitcoinClient is a typed client over a mempool.space-compatible API.
type BitcoinClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewBitcoinClient builds a client rooted at baseURL (e.g.
// "https://mempool.space/api" or "https://mempool.space/testnet/api").
func NewBitcoinClient(baseURL string) *BitcoinClient {
	return &BitcoinClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		rateLimiter: DefaultRateLimiter(),
	}
}

// GetUTXOs returns every UTXO currently held by address.
func (c *BitcoinClient) GetUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var out []UTXO
	err := c.getJSON(ctx, "/address/"+address+"/utxo", &out)
	return out, err
}

// GetFeeEstimates returns the current recommended fee-rate buckets.
func (c *BitcoinClient) GetFeeEstimates(ctx context.Context) (FeeEstimates, error) {
	var out FeeEstimates
	err := c.getJSON(ctx, "/v1/fees/recommended", &out)
	return out, err
}

// BroadcastRawTx submits a raw transaction hex to the network, returning its
// txid.
func (c *BitcoinClient) BroadcastRawTx(ctx context.Context, txHex string) (string, error) {
	start := time.Now()
	txid, err := Retry(ctx, func() (string, error) {
		if waitErr := c.rateLimiter.Wait(ctx, "broadcast"); waitErr != nil {
			return "", waitErr
		}
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx", bytes.NewBufferString(txHex))
		if reqErr != nil {
			return "", coreerrors.Wrap(reqErr, "building broadcast request")
		}
		req.Header.Set("Content-Type", "text/plain")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return "", wrapTransportErr(doErr)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if readErr != nil {
			return "", coreerrors.Wrap(readErr, "reading broadcast response")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", newStatusError(resp, string(body))
		}
		return string(bytes.TrimSpace(body)), nil
	})
	metrics.Global.RecordRPCCall("btc", time.Since(start), err)
	if err != nil {
		return "", APIError(err)
	}
	return txid, nil
}

func (c *BitcoinClient) getJSON(ctx context.Context, path string, out any) error {
	start := time.Now()
	_, err := Retry(ctx, func() (struct{}, error) {
		if waitErr := c.rateLimiter.Wait(ctx, path); waitErr != nil {
			return struct{}{}, waitErr
		}
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if reqErr != nil {
			return struct{}{}, coreerrors.Wrap(reqErr, "building request")
		}
		req.Header.Set("Accept", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return struct{}{}, wrapTransportErr(doErr)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if readErr != nil {
			return struct{}{}, coreerrors.Wrap(readErr, "reading response")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, newStatusError(resp, string(body))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return struct{}{}, coreerrors.Wrap(err, "decoding response from %s", path)
		}
		return struct{}{}, nil
	})
	metrics.Global.RecordRPCCall("btc", time.Since(start), err)
	if err != nil {
		return APIError(err)
	}
	return nil
}

func wrapTransportErr(err error) error {
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
