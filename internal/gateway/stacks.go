package gateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aibtcdev/aibtc-core/internal/metrics"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// AccountInfo mirrors Hiro's /v2/accounts/{principal} response.
type AccountInfo struct {
	Balance     string `json:"balance"` // decimal uSTX, as a string (Hiro emits arbitrary precision)
	Nonce       uint64 `json:"nonce"`
	BalanceProd string `json:"balance_proof,omitempty"`
	NonceProof  string `json:"nonce_proof,omitempty"`
}

// FungibleTokenBalance is one SIP-010 balance row in GetAccountBalances.
type FungibleTokenBalance struct {
	Balance string `json:"balance"`
}

// AccountBalances mirrors Hiro's /extended/v1/address/{principal}/balances.
type AccountBalances struct {
	STX struct {
		Balance string `json:"balance"`
		Locked  string `json:"locked"`
	} `json:"stx"`
	FungibleTokens map[string]FungibleTokenBalance `json:"fungible_tokens"`
}

// Transaction is one row of GetAccountTransactions' results array. Only the
// fields this core acts on are modeled; everything else is dropped.
type Transaction struct {
	TxID        string `json:"tx_id"`
	TxStatus    string `json:"tx_status"`
	TxType      string `json:"tx_type"`
	Nonce       uint64 `json:"nonce"`
	FeeRate     string `json:"fee_rate"`
	BlockHeight uint64 `json:"block_height"`
}

// AccountTransactionsPage is GetAccountTransactions' paginated envelope.
type AccountTransactionsPage struct {
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Total   int           `json:"total"`
	Results []Transaction `json:"results"`
}

// FeePriority is one tx-type's {low,medium,high} mempool fee estimate in
// Hiro's /extended/v1/fee_rate response shape, reused per tx type.
type FeePriority struct {
	LowPriority    float64 `json:"low_priority"`
	MediumPriority float64 `json:"medium_priority"`
	HighPriority   float64 `json:"high_priority"`
}

// MempoolFees is GetMempoolFees' response: one FeePriority per payload type.
type MempoolFees struct {
	TokenTransfer FeePriority `json:"token_transfer"`
	ContractCall  FeePriority `json:"contract_call"`
	SmartContract FeePriority `json:"smart_contract"`
}

// Block is the subset of a Stacks block Hiro returns that callers of this
// core need (height/hash lookups use the same shape).
type Block struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
	Time   int64  `json:"burn_block_time"`
}

// ContractInfo mirrors /extended/v1/contract/{contract_id}.
type ContractInfo struct {
	TxID        string `json:"tx_id"`
	ContractID  string `json:"contract_id"`
	SourceCode  string `json:"source_code"`
	BlockHeight uint64 `json:"block_height"`
}

// ContractInterface mirrors /v2/contracts/interface/{address}/{name}: the ABI
// a caller needs to construct and typecheck a contract-call payload.
type ContractInterface struct {
	Functions []ContractFunction `json:"functions"`
	Variables []any              `json:"variables"`
	Maps      []any              `json:"maps"`
}

// ContractFunction is one exposed function in a contract's interface.
type ContractFunction struct {
	Name   string `json:"name"`
	Access string `json:"access"` // "public" | "private" | "read_only"
	Args   []struct {
		Name string `json:"name"`
		Type any    `json:"type"`
	} `json:"args"`
}

// ContractEvent is one row returned by GetContractEvents.
type ContractEvent struct {
	TxID      string `json:"tx_id"`
	EventType string `json:"event_type"`
	Payload   any    `json:"contract_log,omitempty"`
}

// ContractEventsPage is GetContractEvents' paginated envelope.
type ContractEventsPage struct {
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Results []ContractEvent `json:"results"`
}

// ReadOnlyResult is the decoded response of a read-only contract call.
type ReadOnlyResult struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result"` // hex-encoded Clarity value
	Cause  string `json:"cause,omitempty"`
}

// TxStatus is GetTransactionStatus' response shape.
type TxStatus struct {
	TxStatus    string `json:"tx_status"` // pending|success|abort_by_response|abort_by_post_condition
	BlockHeight uint64 `json:"block_height,omitempty"`
	TxResult    struct {
		Hex  string `json:"hex,omitempty"`
		Repr string `json:"repr,omitempty"`
	} `json:"tx_result,omitempty"`
}

// BroadcastResult is the txid returned by a successful broadcast.
type BroadcastResult struct {
	TxID string `json:"txid"`
}

// readOnlyRequest is the request body for POST
// /v2/contracts/call-read/{address}/{name}/{function}.
type readOnlyRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"` // hex-encoded Clarity values, 0x-prefixed
}

// StacksClient is a typed client over a Hiro-compatible Stacks API.
type StacksClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewStacksClient builds a client rooted at baseURL (e.g.
// "https://api.hiro.so" or "https://api.testnet.hiro.so"). apiKey, if
// non-empty, is sent as the x-api-key header on every request.
func NewStacksClient(baseURL, apiKey string) *StacksClient {
	return &StacksClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		rateLimiter: DefaultRateLimiter(),
	}
}

// GetAccountInfo returns the raw v2 account record (balance + nonce) for
// address. Prefer this over GetStxBalance when the nonce is also needed, to
// avoid two round trips.
func (c *StacksClient) GetAccountInfo(ctx context.Context, address string) (AccountInfo, error) {
	var out AccountInfo
	err := c.getJSON(ctx, "/v2/accounts/"+address+"?proof=0", &out)
	return out, err
}

// GetStxBalance returns the raw decimal uSTX balance string for address.
func (c *StacksClient) GetStxBalance(ctx context.Context, address string) (string, error) {
	info, err := c.GetAccountInfo(ctx, address)
	if err != nil {
		return "", err
	}
	return info.Balance, nil
}

// GetAccountBalances returns STX plus every SIP-010 fungible token balance
// held by address.
func (c *StacksClient) GetAccountBalances(ctx context.Context, address string) (AccountBalances, error) {
	var out AccountBalances
	err := c.getJSON(ctx, "/extended/v1/address/"+address+"/balances", &out)
	return out, err
}

// GetAccountTransactions returns a page of address's confirmed and pending
// transactions.
func (c *StacksClient) GetAccountTransactions(ctx context.Context, address string, limit, offset int) (AccountTransactionsPage, error) {
	var out AccountTransactionsPage
	path := fmt.Sprintf("/extended/v1/address/%s/transactions?limit=%d&offset=%d", address, limit, offset)
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// GetMempoolFees returns the current {low,medium,high} priority estimate for
// each Stacks payload type.
func (c *StacksClient) GetMempoolFees(ctx context.Context) (MempoolFees, error) {
	var out MempoolFees
	err := c.getJSON(ctx, "/extended/v1/fee_rate", &out)
	return out, err
}

// GetBlockByHeight returns the block at the given Stacks height.
func (c *StacksClient) GetBlockByHeight(ctx context.Context, height uint64) (Block, error) {
	var out Block
	err := c.getJSON(ctx, "/extended/v2/blocks/"+strconv.FormatUint(height, 10), &out)
	return out, err
}

// GetBlockByHash returns the block with the given hash.
func (c *StacksClient) GetBlockByHash(ctx context.Context, hash string) (Block, error) {
	var out Block
	err := c.getJSON(ctx, "/extended/v2/blocks/"+hash, &out)
	return out, err
}

// GetContractInfo returns deployment metadata for a contract.
func (c *StacksClient) GetContractInfo(ctx context.Context, contractID string) (ContractInfo, error) {
	var out ContractInfo
	err := c.getJSON(ctx, "/extended/v1/contract/"+contractID, &out)
	return out, err
}

// GetContractInterface returns a contract's public/read-only function ABI.
func (c *StacksClient) GetContractInterface(ctx context.Context, address, contractName string) (ContractInterface, error) {
	var out ContractInterface
	err := c.getJSON(ctx, "/v2/contracts/interface/"+address+"/"+contractName, &out)
	return out, err
}

// GetContractEvents returns a page of a contract's emitted events.
func (c *StacksClient) GetContractEvents(ctx context.Context, contractID string, limit, offset int) (ContractEventsPage, error) {
	var out ContractEventsPage
	path := fmt.Sprintf("/extended/v1/contract/%s/events?limit=%d&offset=%d", contractID, limit, offset)
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// CallReadOnly invokes a read-only contract function and returns its decoded
// result. args must already be 0x-prefixed hex-encoded Clarity values (the
// caller builds them with internal/clarity).
func (c *StacksClient) CallReadOnly(ctx context.Context, address, contractName, functionName string, args []string, senderAddress string) (ReadOnlyResult, error) {
	var out ReadOnlyResult
	path := "/v2/contracts/call-read/" + address + "/" + contractName + "/" + functionName
	body := readOnlyRequest{Sender: senderAddress, Arguments: args}
	err := c.postJSON(ctx, path, body, &out)
	if err == nil && !out.Okay {
		return out, coreerrors.WithDetails(coreerrors.ErrContract, map[string]string{"cause": out.Cause})
	}
	return out, err
}

// GetTransactionStatus returns a transaction's confirmation status.
func (c *StacksClient) GetTransactionStatus(ctx context.Context, txid string) (TxStatus, error) {
	var out TxStatus
	err := c.getJSON(ctx, "/extended/v1/tx/"+txid, &out)
	return out, err
}

// BroadcastRawTx submits a serialized, signed Stacks transaction.
func (c *StacksClient) BroadcastRawTx(ctx context.Context, txHex string) (string, error) {
	start := time.Now()
	txidJSON, err := Retry(ctx, func() (string, error) {
		if waitErr := c.rateLimiter.Wait(ctx, "broadcast"); waitErr != nil {
			return "", waitErr
		}
		raw, decodeErr := hexToBytes(txHex)
		if decodeErr != nil {
			return "", decodeErr
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transactions", bytes.NewReader(raw))
		if reqErr != nil {
			return "", coreerrors.Wrap(reqErr, "building broadcast request")
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		c.setAuthHeader(req)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return "", wrapTransportErr(doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if readErr != nil {
			return "", coreerrors.Wrap(readErr, "reading broadcast response")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", newStatusError(resp, string(respBody))
		}
		// A successful node response is the bare JSON-quoted txid string.
		var txid string
		if err := json.Unmarshal(respBody, &txid); err != nil {
			return string(bytes.Trim(respBody, `"`)), nil
		}
		return txid, nil
	})
	metrics.Global.RecordRPCCall("stacks", time.Since(start), err)
	if err != nil {
		return "", APIError(err)
	}
	return txidJSON, nil
}

func hexToBytes(s string) ([]byte, error) {
	out, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding transaction hex")
	}
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func (c *StacksClient) setAuthHeader(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

func (c *StacksClient) getJSON(ctx context.Context, path string, out any) error {
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
		c.setAuthHeader(req)

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
	metrics.Global.RecordRPCCall("stacks", time.Since(start), err)
	if err != nil {
		return APIError(err)
	}
	return nil
}

func (c *StacksClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return coreerrors.Wrap(err, "encoding request body")
	}

	start := time.Now()
	_, err = Retry(ctx, func() (struct{}, error) {
		if waitErr := c.rateLimiter.Wait(ctx, path); waitErr != nil {
			return struct{}{}, waitErr
		}
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return struct{}{}, coreerrors.Wrap(reqErr, "building request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		c.setAuthHeader(req)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return struct{}{}, wrapTransportErr(doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if readErr != nil {
			return struct{}{}, coreerrors.Wrap(readErr, "reading response")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, newStatusError(resp, string(respBody))
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return struct{}{}, coreerrors.Wrap(err, "decoding response from %s", path)
		}
		return struct{}{}, nil
	})
	metrics.Global.RecordRPCCall("stacks", time.Since(start), err)
	if err != nil {
		return APIError(err)
	}
	return nil
}
