package btctx

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// UTXO is a spendable output this builder can select as a transaction input.
type UTXO struct {
	TxID    string
	Vout    uint32
	Amount  int64 // satoshis
	Ordinal bool  // holds an inscription; excluded under SpendCardinalOnly
}

// SpendPolicy controls whether ordinal-bearing UTXOs may be selected as
// inputs to an ordinary payment.
type SpendPolicy int

const (
	// SpendCardinalOnly refuses to select any UTXO flagged as holding an
	// inscription. This is the safe default.
	SpendCardinalOnly SpendPolicy = iota
	// SpendIncludeOrdinals allows ordinal-bearing UTXOs to be spent like
	// any other, at the caller's own risk of burning an inscription.
	SpendIncludeOrdinals
)

// BuildResult is the outcome of building and signing a P2WPKH spend.
type BuildResult struct {
	TxHex  string
	Txid   string
	Fee    int64
	Vsize  int
	Change int64
}

// SelectUTXOs picks UTXOs in descending value order until their sum covers
// amount plus the estimated fee, re-estimating the fee on each iteration
// since adding an input grows the transaction (a two-pass selection: the
// fee target moves as the input set grows).
func SelectUTXOs(utxos []UTXO, amount int64, feeRateSatPerVByte float64, policy SpendPolicy) (selected []UTXO, fee int64, err error) {
	candidates := make([]UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Ordinal && policy == SpendCardinalOnly {
			continue
		}
		candidates = append(candidates, u)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Amount > candidates[j].Amount })

	var total int64
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Amount

		// First pass: assume a change output exists (2 outputs). If the
		// resulting change would itself be dust, the caller ends up with
		// a single-output transaction instead; EstimateFee is recomputed
		// against whichever shape BuildP2WPKHTransaction actually emits.
		fee = EstimateFee(len(selected), 2, feeRateSatPerVByte)
		if total >= amount+fee {
			return selected, fee, nil
		}
	}

	return nil, 0, coreerrors.New("INSUFFICIENT_FUNDS", "not enough spendable UTXOs to cover amount and fee")
}

// BuildP2WPKHTransaction selects UTXOs, builds a one-output (plus optional
// change) segwit transaction, signs every input with SIGHASH_ALL under
// BIP-143, and returns the canonical serialized hex.
func BuildP2WPKHTransaction(
	utxos []UTXO,
	recipientAddress string,
	amount int64,
	feeRateSatPerVByte float64,
	changeAddress string,
	privateKey, publicKey []byte,
	hrp string,
	policy SpendPolicy,
) (*BuildResult, error) {
	if amount < DustLimitP2WPKH {
		return nil, coreerrors.New("DUST_OUTPUT", "recipient amount is below the P2WPKH dust limit")
	}

	params, err := chainParamsForHRP(hrp)
	if err != nil {
		return nil, err
	}

	selected, fee, err := SelectUTXOs(utxos, amount, feeRateSatPerVByte, policy)
	if err != nil {
		return nil, err
	}

	var totalIn int64
	for _, u := range selected {
		totalIn += u.Amount
	}
	change := totalIn - amount - fee

	// The selection loop priced the fee assuming a change output exists.
	// If the resulting change would be dust (or negative), drop the change
	// output and re-price the fee against a single-output transaction.
	nOutputs := 2
	if change < DustLimitP2WPKH {
		nOutputs = 1
		fee = EstimateFee(len(selected), nOutputs, feeRateSatPerVByte)
		change = totalIn - amount - fee
	}
	if change < 0 {
		return nil, coreerrors.New("INSUFFICIENT_FUNDS", "selected UTXOs do not cover amount plus fee")
	}
	if nOutputs == 1 && change > 0 {
		// With the change output dropped, whatever the re-priced fee leaves
		// over goes to the fee as well.
		fee += change
		change = 0
	}

	pubKeyHash := cryptoprim.Hash160(publicKey)

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range selected {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, coreerrors.Wrap(err, "parsing utxo txid")
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
	}

	destAddr, err := btcutil.DecodeAddress(recipientAddress, params)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding recipient address")
	}
	destScript, err := txscript.PayToAddrScript(destAddr)
	if err != nil {
		return nil, coreerrors.Wrap(err, "building recipient script")
	}
	tx.AddTxOut(wire.NewTxOut(amount, destScript))

	if change > 0 {
		changeAddr, err := btcutil.DecodeAddress(changeAddress, params)
		if err != nil {
			return nil, coreerrors.Wrap(err, "decoding change address")
		}
		changeScript, err := txscript.PayToAddrScript(changeAddr)
		if err != nil {
			return nil, coreerrors.Wrap(err, "building change script")
		}
		tx.AddTxOut(wire.NewTxOut(change, changeScript))
	}

	p2wpkhScript, err := payToWitnessPubKeyHashScript(pubKeyHash)
	if err != nil {
		return nil, err
	}
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(selected))
	for i, u := range selected {
		prevOuts[tx.TxIn[i].PreviousOutPoint] = wire.NewTxOut(u.Amount, p2wpkhScript)
	}
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i, u := range selected {
		scriptCode, err := scriptCodeForP2WPKH(pubKeyHash)
		if err != nil {
			return nil, err
		}
		sigHash, err := txscript.CalcWitnessSigHash(scriptCode, sigHashes, txscript.SigHashAll, tx, i, u.Amount)
		if err != nil {
			return nil, coreerrors.Wrap(err, "computing witness sighash")
		}

		r, s, _, err := cryptoprim.SignRecoverable(privateKey, sigHash)
		if err != nil {
			return nil, err
		}
		derSig := append(derEncodeSignature(r, s), byte(txscript.SigHashAll))
		tx.TxIn[i].Witness = wire.TxWitness{derSig, publicKey}
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, coreerrors.Wrap(err, "serializing transaction")
	}

	return &BuildResult{
		TxHex:  hex.EncodeToString(buf.Bytes()),
		Txid:   tx.TxHash().String(),
		Fee:    fee,
		Vsize:  EstimateP2WPKHVsize(len(selected), nOutputs),
		Change: change,
	}, nil
}

func payToWitnessPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(pubKeyHash).
		Script()
}

func scriptCodeForP2WPKH(pubKeyHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubKeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// derEncodeSignature encodes a raw (r, s) ECDSA signature pair as DER, the
// form Bitcoin's scriptSig/witness signatures require.
func derEncodeSignature(r, s []byte) []byte {
	rEnc := canonicalizeInt(r)
	sEnc := canonicalizeInt(s)

	totalLen := 2 + len(rEnc) + 2 + len(sEnc)
	der := make([]byte, 0, 2+totalLen)
	der = append(der, 0x30, byte(totalLen))
	der = append(der, 0x02, byte(len(rEnc)))
	der = append(der, rEnc...)
	der = append(der, 0x02, byte(len(sEnc)))
	der = append(der, sEnc...)
	return der
}

func canonicalizeInt(b []byte) []byte {
	v := make([]byte, len(b))
	copy(v, b)
	for len(v) > 1 && v[0] == 0 {
		v = v[1:]
	}
	if len(v) > 0 && v[0]&0x80 != 0 {
		v = append([]byte{0}, v...)
	}
	return v
}
