package stxtx

import (
	"context"

	"github.com/aibtcdev/aibtc-core/internal/clarity"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/gateway"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/session"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Signer is the minimal account shape a builder operation needs: the
// network to sign for, the origin address/private key, and (for sponsored
// transactions) a separate sponsor key supplied by the caller out of band.
type Signer struct {
	Network    hdwallet.Network
	Address    string
	PrivateKey []byte
}

// FromSessionAccount adapts the unlocked session account into a Signer.
func FromSessionAccount(account *session.Account) Signer {
	return Signer{
		Network:    account.Network,
		Address:    account.StxAddress,
		PrivateKey: account.StxPrivateKey,
	}
}

// Result is the outcome of a successful build-and-sign operation.
type Result struct {
	Txid  string
	TxHex string
	Nonce uint64
	Fee   uint64
}

// BroadcastResult is the outcome of a broadcast-only operation.
type BroadcastResult struct {
	Txid string
}

// Chain is the subset of the chain gateway a builder operation needs: nonce
// lookup and submission.
type Chain interface {
	GetAccountInfo(ctx context.Context, address string) (gateway.AccountInfo, error)
	BroadcastRawTx(ctx context.Context, txHex string) (string, error)
}

// TransferOptions configures a native STX transfer.
type TransferOptions struct {
	Memo  string
	Fee   string  // fee expression resolved via internal/feeresolver; empty auto-estimates
	Nonce *uint64 // overrides the chain-fetched nonce when set

	// Sponsored marks the transaction as sponsor-paid (fee must be 0/unset).
	// When Sponsor is also set, this wallet signs both roles and the
	// transaction is fully broadcast; otherwise a partially-signed hex is
	// returned for an external sponsor (e.g. an x402 facilitator) to
	// countersign.
	Sponsored bool
	Sponsor   *Signer

	// PostConditions overrides the default (none) set of post conditions,
	// e.g. to lock the exact amount an x402 payment promises.
	PostConditions []PostCondition
}

// Transfer builds, signs, and broadcasts a token-transfer transaction moving
// amountUSTX from signer to recipient.
func Transfer(ctx context.Context, chain Chain, fees *feeresolver.Resolver, signer Signer, recipient string, amountUSTX uint64, opts TransferOptions) (Result, error) {
	recipientPrincipal, err := addressPrincipal(recipient)
	if err != nil {
		return Result{}, err
	}
	payload := TokenTransferPayload{Recipient: recipientPrincipal, AmountUSTX: amountUSTX, Memo: opts.Memo}
	return buildSignBroadcastWithConditions(ctx, chain, fees, signer, payload, feeresolver.TokenTransfer,
		opts.Fee, opts.Nonce, opts.Sponsored, opts.Sponsor, PostConditionModeDeny, opts.PostConditions)
}

// ContractCallOptions configures a contract-call transaction.
type ContractCallOptions struct {
	ContractAddress   string
	ContractName      string
	FunctionName      string
	FunctionArgs      []clarity.Value
	PostConditionMode PostConditionMode // zero value resolves to Deny
	PostConditions    []PostCondition
	Fee               string
	Nonce             *uint64
	Sponsored         bool
	Sponsor           *Signer
}

// CallContract builds, signs, and broadcasts a contract-call transaction.
func CallContract(ctx context.Context, chain Chain, fees *feeresolver.Resolver, signer Signer, opts ContractCallOptions) (Result, error) {
	payload := ContractCallPayload{
		ContractAddress: opts.ContractAddress,
		ContractName:    opts.ContractName,
		FunctionName:    opts.FunctionName,
		FunctionArgs:    opts.FunctionArgs,
	}
	return buildSignBroadcastWithConditions(ctx, chain, fees, signer, payload, feeresolver.ContractCall,
		opts.Fee, opts.Nonce, opts.Sponsored, opts.Sponsor, opts.PostConditionMode, opts.PostConditions)
}

// DeployContractOptions configures a contract-deployment transaction.
type DeployContractOptions struct {
	ContractName string
	CodeBody     string
	Fee          string
	Nonce        *uint64
	Sponsored    bool
	Sponsor      *Signer
}

// DeployContract builds, signs, and broadcasts a smart-contract-deploy
// transaction.
func DeployContract(ctx context.Context, chain Chain, fees *feeresolver.Resolver, signer Signer, opts DeployContractOptions) (Result, error) {
	payload := SmartContractPayload{ContractName: opts.ContractName, CodeBody: opts.CodeBody}
	return buildSignBroadcastWithConditions(ctx, chain, fees, signer, payload, feeresolver.SmartContract,
		opts.Fee, opts.Nonce, opts.Sponsored, opts.Sponsor, PostConditionModeDeny, nil)
}

// BroadcastSigned submits an already-serialized, already-signed transaction
// hex string as-is.
func BroadcastSigned(ctx context.Context, chain Chain, txHex string) (BroadcastResult, error) {
	txid, err := chain.BroadcastRawTx(ctx, txHex)
	if err != nil {
		return BroadcastResult{}, err
	}
	return BroadcastResult{Txid: txid}, nil
}

func buildSignBroadcastWithConditions(ctx context.Context, chain Chain, fees *feeresolver.Resolver, signer Signer, payload Payload, txType feeresolver.TxType, feeExpr string, nonceOverride *uint64, sponsored bool, sponsorSigner *Signer, pcMode PostConditionMode, postConditions []PostCondition) (Result, error) {
	if sponsored && feeExpr != "" && feeExpr != "0" {
		return Result{}, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"reason": "fee must be 0 (or unset) when sponsored=true",
		})
	}

	nonce, err := resolveNonce(ctx, chain, signer.Address, nonceOverride)
	if err != nil {
		return Result{}, err
	}

	var fee uint64
	if !sponsored {
		resolved, explicit, ferr := fees.Resolve(ctx, feeExpr, txType)
		if ferr != nil {
			return Result{}, ferr
		}
		if !explicit {
			return Result{}, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
				"reason": "an explicit fee or preset is required (auto-estimation requires a separate vsize-based call)",
			})
		}
		fee = resolved
	}

	pubKey, err := cryptoprim.PublicKeyFromPrivate(signer.PrivateKey)
	if err != nil {
		return Result{}, err
	}
	origin := SpendingCondition{Signer: hash160OfCompressedPubKey(pubKey), Nonce: nonce, Fee: fee}

	tx := newTransaction(signer.Network, origin, payload)
	if pcMode != 0 {
		tx.PostConditionMode = pcMode
	}
	tx.PostConditions = postConditions

	if sponsored {
		// A placeholder spending condition with an all-zero signer hash:
		// the real sponsor identity is filled in when the sponsor
		// countersigns (an x402 relay, typically).
		tx.Auth.Sponsor = &SpendingCondition{Signer: make([]byte, 20)}
	}

	if err := tx.signOrigin(signer.PrivateKey); err != nil {
		return Result{}, err
	}

	if !sponsored {
		txHex, herr := tx.HexString()
		if herr != nil {
			return Result{}, herr
		}
		txid, berr := chain.BroadcastRawTx(ctx, txHex)
		if berr != nil {
			return Result{}, berr
		}
		return Result{Txid: txid, TxHex: txHex, Nonce: nonce, Fee: fee}, nil
	}

	if sponsorSigner == nil {
		// Returned unsigned-by-sponsor for the caller (or an x402 relay) to
		// countersign and broadcast separately.
		txHex, herr := tx.partialHexString()
		if herr != nil {
			return Result{}, herr
		}
		return Result{TxHex: txHex, Nonce: nonce, Fee: fee}, nil
	}

	sponsorPubKey, err := cryptoprim.PublicKeyFromPrivate(sponsorSigner.PrivateKey)
	if err != nil {
		return Result{}, err
	}
	sponsorNonce, err := resolveNonce(ctx, chain, sponsorSigner.Address, nil)
	if err != nil {
		return Result{}, err
	}
	sponsorFee, _, err := fees.Resolve(ctx, "medium", txType)
	if err != nil {
		return Result{}, err
	}
	if err := tx.PrepareSponsor(sponsorPubKey, sponsorNonce, sponsorFee); err != nil {
		return Result{}, err
	}
	if err := tx.SignSponsor(sponsorSigner.PrivateKey); err != nil {
		return Result{}, err
	}

	txHex, herr := tx.HexString()
	if herr != nil {
		return Result{}, herr
	}
	txid, berr := chain.BroadcastRawTx(ctx, txHex)
	if berr != nil {
		return Result{}, berr
	}
	return Result{Txid: txid, TxHex: txHex, Nonce: nonce, Fee: sponsorFee}, nil
}

func resolveNonce(ctx context.Context, chain Chain, address string, override *uint64) (uint64, error) {
	if override != nil {
		return *override, nil
	}
	info, err := chain.GetAccountInfo(ctx, address)
	if err != nil {
		return 0, err
	}
	return info.Nonce, nil
}

func addressPrincipal(address string) (Principal, error) {
	addr, contractName, isContract := cutContractID(address)
	if isContract {
		return Principal{Kind: PrincipalContract, Address: addr, ContractName: contractName}, nil
	}
	return Principal{Kind: PrincipalStandard, Address: addr}, nil
}

func cutContractID(id string) (address, contractName string, isContract bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return id[:i], id[i+1:], true
		}
	}
	return id, "", false
}
