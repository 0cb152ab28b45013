// Package x402 implements the client side of the x402 HTTP micropayment
// protocol: on an HTTP 402 response, build a sponsored Stacks payment, retry
// the request carrying it, and (if settlement can't be confirmed inline)
// recover by polling the chain for the transaction this client already
// signed.
package x402

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/gateway"
	"github.com/aibtcdev/aibtc-core/internal/metrics"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Protocol version this client speaks, fixed at 2.
const ProtocolVersion = 2

// Header names, matched case-insensitively by net/http.Header.
const (
	HeaderPaymentRequired  = "Payment-Required"
	HeaderPaymentSignature = "Payment-Signature"
	HeaderPaymentResponse  = "Payment-Response"
)

const (
	defaultPollMaxMs      = 10_000
	defaultPollIntervalMs = 2_000
)

// Resource identifies what is being paid for.
type Resource struct {
	URL string `json:"url"`
}

// Accept is one payment option a server will take for a resource.
type Accept struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	Amount            string         `json:"amount"`
	Asset             string         `json:"asset"`
	PayTo             string         `json:"payTo"`
	MaxTimeoutSeconds int            `json:"maxTimeoutSeconds"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// PaymentRequired is the decoded payload of the payment-required header a
// server sends with an HTTP 402 response.
type PaymentRequired struct {
	X402Version int      `json:"x402Version"`
	Resource    Resource `json:"resource"`
	Accepts     []Accept `json:"accepts"`
	Error       string   `json:"error,omitempty"`
}

// PaymentPayload is the payload this client base64-encodes into the
// payment-signature header on the retried request.
type PaymentPayload struct {
	X402Version int            `json:"x402Version"`
	Resource    *Resource      `json:"resource,omitempty"`
	Accepted    Accept         `json:"accepted"`
	Payload     TxPayload      `json:"payload"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

// TxPayload carries the signed transaction, hex-encoded with a "0x" prefix.
type TxPayload struct {
	Transaction string `json:"transaction"`
}

// SettlementResponse is the decoded payload of the payment-response header a
// server sends once it has accepted and (attempted to) settle the payment.
type SettlementResponse struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network,omitempty"`
	Payer       string `json:"payer,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// RecoveryResult reports the outcome of polling for a payment that was sent
// but whose settlement response never arrived.
type RecoveryResult struct {
	Status      string
	Txid        string
	ExplorerURL string
}

// Result is the outcome of Do: either the server accepted the request
// without payment, or it did after the two-round challenge, optionally with
// a recovery poll if settlement timed out.
type Result struct {
	StatusCode int
	Body       []byte
	Paid       bool
	Settlement *SettlementResponse
	Recovery   *RecoveryResult
}

// Chain is the subset of the Stacks chain gateway the x402 client needs:
// nonce lookup for building the payment (via stxtx.Transfer's Chain
// dependency) and transaction-status polling for the recovery path.
type Chain interface {
	stxtx.Chain
	GetTransactionStatus(ctx context.Context, txid string) (gateway.TxStatus, error)
}

// Client drives the two-round x402 flow over an arbitrary *http.Client.
type Client struct {
	HTTPClient *http.Client
	Chain      Chain
	Fees       *feeresolver.Resolver

	// PollMaxMs/PollIntervalMs bound the recovery poll; zero values fall
	// back to the package defaults (10s / 2s).
	PollMaxMs      int
	PollIntervalMs int

	// ExplorerBaseURL, if set, is used to build RecoveryResult.ExplorerURL
	// as ExplorerBaseURL + txid.
	ExplorerBaseURL string
}

// Do sends req. If the server does not reply 402, the response is returned
// as-is with Paid=false. Otherwise Do builds and signs a sponsored Stacks
// payment for the first accepted option, retries the request carrying it,
// and returns the outcome: recovering via chain polling if the retried
// request times out or errors after the payment was already sent.
func (c *Client) Do(ctx context.Context, req *http.Request, signer stxtx.Signer) (*Result, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, body, err := doRequest(ctx, httpClient, req)
	if err != nil {
		return nil, coreerrors.Wrap(err, "sending initial request")
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return &Result{StatusCode: resp.StatusCode, Body: body}, nil
	}

	required, err := decodePaymentRequired(resp.Header.Get(HeaderPaymentRequired))
	if err != nil {
		return nil, err
	}
	if len(required.Accepts) == 0 {
		return nil, coreerrors.New("VALIDATION_ERROR", "payment-required header lists no accepted payment methods")
	}
	accepted := required.Accepts[0]

	txHex, err := c.buildPayment(ctx, signer, accepted)
	if err != nil {
		return nil, err
	}

	payload := PaymentPayload{
		X402Version: ProtocolVersion,
		Resource:    &required.Resource,
		Accepted:    accepted,
		Payload:     TxPayload{Transaction: "0x" + txHex},
	}
	encodedPayload, err := encodePaymentPayload(payload)
	if err != nil {
		return nil, err
	}

	retryReq := req.Clone(ctx)
	retryReq.Header.Set(HeaderPaymentSignature, encodedPayload)

	retryResp, retryBody, retryErr := doRequest(ctx, httpClient, retryReq)
	if retryErr != nil || retryResp.StatusCode >= 500 {
		// The payment was already signed and sent to the relay; recover by
		// polling the chain for it rather than re-signing (nonce reuse
		// would be detected server-side).
		recovery, rerr := c.recover(ctx, txHex)
		if rerr != nil {
			return nil, rerr
		}
		metrics.Global.RecordX402Payment(true)
		return &Result{Paid: true, Recovery: recovery}, nil
	}

	result := &Result{StatusCode: retryResp.StatusCode, Body: retryBody, Paid: true}
	if retryResp.StatusCode >= 200 && retryResp.StatusCode < 300 {
		settlement, serr := decodeSettlementResponse(retryResp.Header.Get(HeaderPaymentResponse))
		if serr == nil {
			result.Settlement = settlement
		}
	}
	metrics.Global.RecordX402Payment(false)
	return result, nil
}

// buildPayment constructs and signs (but does not broadcast) a sponsored
// Stacks transfer paying accepted.Amount micro-units of accepted.Asset to
// accepted.PayTo, with a post condition locking the exact amount.
func (c *Client) buildPayment(ctx context.Context, signer stxtx.Signer, accepted Accept) (string, error) {
	amount, err := parseAmount(accepted.Amount)
	if err != nil {
		return "", err
	}

	originPrincipal := stxtx.Principal{Kind: stxtx.PrincipalStandard, Address: signer.Address}
	postConditions := []stxtx.PostCondition{
		stxtx.STXPostCondition{Principal: originPrincipal, Comparator: stxtx.Eq, AmountUSTX: amount},
	}

	result, err := stxtx.Transfer(ctx, c.Chain, c.Fees, signer, accepted.PayTo, amount, stxtx.TransferOptions{
		Sponsored:      true,
		PostConditions: postConditions,
	})
	if err != nil {
		return "", err
	}
	return result.TxHex, nil
}

// recover extracts the txid from the already-built transaction hex and
// polls the chain for its status until it lands or the deadline passes.
func (c *Client) recover(ctx context.Context, txHex string) (*RecoveryResult, error) {
	txid, err := stxtx.TxidFromRawHex(txHex)
	if err != nil {
		return nil, err
	}

	pollMax := time.Duration(c.PollMaxMs) * time.Millisecond
	if c.PollMaxMs == 0 {
		pollMax = defaultPollMaxMs * time.Millisecond
	}
	interval := time.Duration(c.PollIntervalMs) * time.Millisecond
	if c.PollIntervalMs == 0 {
		interval = defaultPollIntervalMs * time.Millisecond
	}

	deadline := time.Now().Add(pollMax)
	status := "pending"
	for {
		st, serr := c.Chain.GetTransactionStatus(ctx, txid)
		if serr == nil {
			status = st.TxStatus
			if status != "pending" {
				break
			}
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	explorerURL := ""
	if c.ExplorerBaseURL != "" {
		explorerURL = c.ExplorerBaseURL + txid
	}
	return &RecoveryResult{Status: status, Txid: txid, ExplorerURL: explorerURL}, nil
}

func doRequest(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	req = req.WithContext(ctx)
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func decodePaymentRequired(header string) (*PaymentRequired, error) {
	if header == "" {
		return nil, coreerrors.New("VALIDATION_ERROR", "missing payment-required header on 402 response")
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding payment-required header")
	}
	var out PaymentRequired
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, coreerrors.Wrap(err, "parsing payment-required JSON")
	}
	return &out, nil
}

func encodePaymentPayload(payload PaymentPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", coreerrors.Wrap(err, "encoding payment payload")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeSettlementResponse(header string) (*SettlementResponse, error) {
	if header == "" {
		return nil, coreerrors.New("NOT_FOUND", "missing payment-response header")
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding payment-response header")
	}
	var out SettlementResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, coreerrors.Wrap(err, "parsing payment-response JSON")
	}
	return &out, nil
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"amount": s})
	}
	return v, nil
}
