package stxtx

import (
	"encoding/hex"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Transaction is a fully-specified Stacks transaction, ready to be signed
// and serialized to the wire format broadcast to a Stacks node.
type Transaction struct {
	version           byte
	chainID           uint32
	Auth              Auth
	AnchorMode        AnchorMode
	PostConditionMode PostConditionMode
	PostConditions    []PostCondition
	Payload           Payload
}

// newTransaction builds a Transaction with its version/chainID fixed to
// network, deny-mode post conditions, and any-block anchoring as the
// baseline defaults.
func newTransaction(network hdwallet.Network, origin SpendingCondition, payload Payload) *Transaction {
	return &Transaction{
		version:           versionByte(network),
		chainID:           chainIDFor(network),
		Auth:              Auth{Origin: origin},
		AnchorMode:        AnchorModeAny,
		PostConditionMode: PostConditionModeDeny,
		Payload:           payload,
	}
}

// serializeWithZeroedSignature renders the transaction with the origin's
// signature zeroed and, when sponsored, either the sponsor's signature also
// zeroed (stage=false, the origin-signing view) or the origin signature kept
// live and only the sponsor's zeroed (stage=true, the sponsor-signing view).
func (tx *Transaction) serializeWithZeroedSignature(sponsorStage bool) ([]byte, error) {
	b := new(buffer)
	b.u8(tx.version)
	b.u32(tx.chainID)
	if err := tx.Auth.encode(b, !sponsorStage, true); err != nil {
		return nil, err
	}
	if err := tx.encodeBody(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (tx *Transaction) encodeBody(b *buffer) error {
	b.u8(byte(tx.AnchorMode))
	b.u8(byte(tx.PostConditionMode))
	if err := encodePostConditions(b, tx.PostConditions); err != nil {
		return err
	}
	return tx.Payload.encode(b)
}

// Serialize renders the final, fully-signed wire format.
func (tx *Transaction) Serialize() ([]byte, error) {
	if !tx.Auth.Origin.signed {
		return nil, coreerrors.New("UNSIGNED_TRANSACTION", "transaction has not been signed")
	}
	if tx.Auth.Sponsor != nil && !tx.Auth.Sponsor.signed {
		return nil, coreerrors.New("UNSIGNED_TRANSACTION", "sponsored transaction is missing the sponsor signature")
	}
	b := new(buffer)
	b.u8(tx.version)
	b.u32(tx.chainID)
	if err := tx.Auth.encode(b, false, false); err != nil {
		return nil, err
	}
	if err := tx.encodeBody(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Txid returns the transaction's id: SHA-512/256 of its final serialized
// form, hex-encoded.
func (tx *Transaction) Txid() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	digest := cryptoprim.SHA512_256(raw)
	return hex.EncodeToString(digest[:]), nil
}

// HexString is a convenience combining Serialize with hex encoding, the
// format the chain gateway's broadcast endpoints expect.
func (tx *Transaction) HexString() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// TxidFromRawHex computes a transaction's id directly from its serialized
// hex form, without parsing its fields back into a Transaction. A
// fully-signed transaction's id is fixed by its bytes, so this is all a
// caller needs to recover the id of a transaction it did not build itself
// (e.g. one read back from an x402 payment-signature header).
func TxidFromRawHex(txHex string) (string, error) {
	raw, err := decodeHex(txHex)
	if err != nil {
		return "", err
	}
	digest := cryptoprim.SHA512_256(raw)
	return hex.EncodeToString(digest[:]), nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding transaction hex")
	}
	return raw, nil
}

// partialHexString renders a sponsored transaction with the origin already
// signed but the sponsor's signature left zeroed, the form a sponsor
// countersigns (e.g. the x402 relay) before broadcast.
func (tx *Transaction) partialHexString() (string, error) {
	if !tx.Auth.Origin.signed {
		return "", coreerrors.New("UNSIGNED_TRANSACTION", "origin must be signed before producing a sponsor-pending transaction")
	}
	raw, err := tx.serializeWithZeroedSignature(true)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
