package btctx

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// revealSafetyMarginSats is folded into the commit output on top of dust and
// the estimated reveal fee, absorbing small reveal-fee estimation error.
const revealSafetyMarginSats = 1000

// revealWitnessOverheadVBytes approximates the fixed per-witness overhead
// (item-count byte, control-block length prefix) outside the script push
// itself.
const revealWitnessOverheadVBytes = 30

// revealBaseVBytes approximates the non-witness portion of a single-input,
// single-output taproot reveal transaction: version, locktime, one input
// (outpoint + empty scriptSig + sequence), one P2TR output, segwit marker/flag.
const revealBaseVBytes = 70

// CommitPlan is the deterministic material needed to build both the commit
// and, later, the reveal transaction. The internal x-only key passed to
// PlanCommit is derived from the wallet, and this implementation reuses the wallet's taproot key across
// inscriptions rather than minting a fresh one-time key per inscription,
// trading inscription-linkability privacy for not needing a separate
// key-index ledger per pending reveal.
type CommitPlan struct {
	RevealScript  []byte
	ControlBlock  []byte
	CommitAddress string
	RevealFee     int64
	CommitAmount  int64
}

// PlanCommit computes the taproot leaf script, control block, and commit
// output amount for inscribing (contentType, body) with the given
// feeRateSatPerVByte, without yet knowing the commit txid. internalXOnly is
// the wallet's taproot internal public key (32 bytes, x-only).
func PlanCommit(internalXOnly []byte, insc Inscription, feeRateSatPerVByte float64, hrp string) (*CommitPlan, error) {
	params, err := chainParamsForHRP(hrp)
	if err != nil {
		return nil, err
	}

	revealScript, err := buildRevealScript(internalXOnly, insc)
	if err != nil {
		return nil, err
	}

	leafHash := txscript.NewBaseTapLeaf(revealScript).TapHash()
	merkleRoot := leafHash[:]

	outputXOnly, yIsOdd, err := cryptoprim.TweakedOutputKeyParity(internalXOnly, merkleRoot)
	if err != nil {
		return nil, err
	}
	controlBlock := buildControlBlock(internalXOnly, yIsOdd)

	commitAddr, err := p2trAddress(outputXOnly, params)
	if err != nil {
		return nil, err
	}

	revealVsize := EstimateRevealVsize(len(insc.Body))
	revealFee := int64(float64(revealVsize)*feeRateSatPerVByte) + 1

	commitAmount := DustLimitP2TR + revealFee + revealSafetyMarginSats

	return &CommitPlan{
		RevealScript:  revealScript,
		ControlBlock:  controlBlock,
		CommitAddress: commitAddr,
		RevealFee:     revealFee,
		CommitAmount:  commitAmount,
	}, nil
}

// BuildCommitTransaction builds a P2WPKH spend whose sole non-change output
// funds the taproot commit address computed by PlanCommit.
func BuildCommitTransaction(
	plan *CommitPlan,
	utxos []UTXO,
	feeRateSatPerVByte float64,
	changeAddress string,
	privateKey, publicKey []byte,
	hrp string,
	policy SpendPolicy,
) (*BuildResult, error) {
	return BuildP2WPKHTransaction(utxos, plan.CommitAddress, plan.CommitAmount, feeRateSatPerVByte, changeAddress, privateKey, publicKey, hrp, policy)
}

// BuildRevealTransaction spends the single taproot output produced by a
// commit transaction (commitTxid, vout 0, value commitAmount) via the
// script path, revealing the inscription to recipientTaprootAddress. It can
// be rebuilt later from nothing but (commitTxid, commitAmount, contentType,
// body) and the same deterministic internal key.
func BuildRevealTransaction(
	plan *CommitPlan,
	commitTxid string,
	commitAmount int64,
	recipientTaprootAddress string,
	internalPrivateKey []byte,
	hrp string,
) (*BuildResult, error) {
	params, err := chainParamsForHRP(hrp)
	if err != nil {
		return nil, err
	}

	revealFee := plan.RevealFee
	revealAmount := commitAmount - revealFee
	if revealAmount < DustLimitP2TR {
		return nil, coreerrors.New("DUST_OUTPUT", "reveal output amount is below the P2TR dust limit")
	}

	hash, err := chainhash.NewHashFromStr(commitTxid)
	if err != nil {
		return nil, coreerrors.Wrap(err, "parsing commit txid")
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 0), nil, nil))

	destAddr, err := btcutil.DecodeAddress(recipientTaprootAddress, params)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding recipient taproot address")
	}
	destScript, err := txscript.PayToAddrScript(destAddr)
	if err != nil {
		return nil, coreerrors.Wrap(err, "building recipient script")
	}
	tx.AddTxOut(wire.NewTxOut(revealAmount, destScript))

	commitOutputScript, err := payToTaprootScript(plan.CommitAddress, params)
	if err != nil {
		return nil, err
	}
	prevOuts := map[wire.OutPoint]*wire.TxOut{
		tx.TxIn[0].PreviousOutPoint: wire.NewTxOut(commitAmount, commitOutputScript),
	}
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	sigHash, err := txscript.CalcTapscriptSignaturehash(
		sigHashes, txscript.SigHashDefault, tx, 0, fetcher,
		txscript.NewBaseTapLeaf(plan.RevealScript),
	)
	if err != nil {
		return nil, coreerrors.Wrap(err, "computing tapscript sighash")
	}

	sig, err := cryptoprim.SignSchnorr(internalPrivateKey, sigHash, nil)
	if err != nil {
		return nil, err
	}

	tx.TxIn[0].Witness = wire.TxWitness{sig, plan.RevealScript, plan.ControlBlock}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, coreerrors.Wrap(err, "serializing reveal transaction")
	}

	baseSize := tx.SerializeSizeStripped()
	totalSize := tx.SerializeSize()
	vsize := (baseSize*3 + totalSize + 3) / 4

	return &BuildResult{
		TxHex: hex.EncodeToString(buf.Bytes()),
		Txid:  tx.TxHash().String(),
		Fee:   revealFee,
		Vsize: vsize,
	}, nil
}

// EstimateRevealVsize approximates a script-path taproot reveal
// transaction's virtual size: overhead + p2trInputBase +
// ceil(bodyBytes/4 * 1.25) + witnessOverhead + p2trOutput.
func EstimateRevealVsize(bodyBytes int) int {
	witnessVBytes := (bodyBytes*125 + 399) / 400 // ceil(bodyBytes/4 * 1.25)
	return revealBaseVBytes + witnessVBytes + revealWitnessOverheadVBytes
}

// buildControlBlock assembles the BIP-341 control block for a single-leaf
// script-path spend: leaf version + parity byte, the internal key, and (for
// a single leaf) no additional merkle path nodes.
func buildControlBlock(internalXOnly []byte, outputKeyYIsOdd bool) []byte {
	leafVersion := byte(txscript.BaseLeafVersion)
	if outputKeyYIsOdd {
		leafVersion |= 1
	}
	cb := make([]byte, 0, 1+len(internalXOnly))
	cb = append(cb, leafVersion)
	cb = append(cb, internalXOnly...)
	return cb
}

func p2trAddress(outputXOnly []byte, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.NewAddressTaproot(outputXOnly, params)
	if err != nil {
		return "", coreerrors.Wrap(err, "encoding taproot address")
	}
	return addr.EncodeAddress(), nil
}

func payToTaprootScript(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding taproot address")
	}
	return txscript.PayToAddrScript(addr)
}
