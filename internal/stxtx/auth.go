package stxtx

import (
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

const spendingConditionSignatureLen = 65

// SpendingCondition is a single-signature authorization: the hash of the
// signer's public key, its nonce/fee, and (once signed) the recoverable
// signature proving the origin or sponsor authorized this transaction.
type SpendingCondition struct {
	Signer    []byte // hash160 of the signer's compressed public key
	Nonce     uint64
	Fee       uint64
	Signature [spendingConditionSignatureLen]byte
	signed    bool
}

// encode writes the spending condition. When zeroSignature is set, the
// 65-byte signature field is written as all zero bytes regardless of
// sc.Signature: used to build the unsigned form a sighash commits to.
func (sc *SpendingCondition) encode(b *buffer, zeroSignature bool) error {
	if len(sc.Signer) != 20 {
		return coreerrors.New("INVALID_SIGNER", "spending condition signer must be a 20-byte hash160")
	}
	b.u8(byte(hashModeP2PKHNonSequential))
	b.raw(sc.Signer)
	b.u64(sc.Nonce)
	b.u64(sc.Fee)
	b.u8(byte(keyEncodingCompressed))
	if zeroSignature {
		var zero [spendingConditionSignatureLen]byte
		b.raw(zero[:])
	} else {
		b.raw(sc.Signature[:])
	}
	return nil
}

// Auth is a transaction's authorization: either a standalone origin, or an
// origin whose fee is covered by a separate sponsor.
type Auth struct {
	Origin  SpendingCondition
	Sponsor *SpendingCondition // nil unless sponsored
}

func (a Auth) kind() authType {
	if a.Sponsor != nil {
		return authTypeSponsored
	}
	return authTypeStandard
}

// encode writes the authorization. zeroOriginSig/zeroSponsorSig independently
// control whether each spending condition's signature is zeroed, since the
// origin and sponsor sign over different snapshots of the transaction.
func (a Auth) encode(b *buffer, zeroOriginSig, zeroSponsorSig bool) error {
	b.u8(byte(a.kind()))
	if err := a.Origin.encode(b, zeroOriginSig); err != nil {
		return err
	}
	if a.Sponsor != nil {
		return a.Sponsor.encode(b, zeroSponsorSig)
	}
	return nil
}

// signOrigin computes this transaction's pre-sign hash over everything
// serialized so far with a zeroed origin signature, then signs it with
// privateKey and installs the recoverable signature into Auth.Origin.
//
// This mirrors Stacks' two-stage sighash: an initial digest over the fully
// serialized (but unsigned) transaction, folded together with the
// authorization type, fee, and nonce that digest must commit to.
func (tx *Transaction) signOrigin(privateKey []byte) error {
	unsigned, err := tx.serializeWithZeroedSignature(false)
	if err != nil {
		return err
	}
	initial := cryptoprim.SHA512_256(unsigned)

	presign := new(buffer)
	presign.raw(initial[:])
	presign.u8(byte(tx.Auth.kind()))
	presign.u64(tx.Auth.Origin.Fee)
	presign.u64(tx.Auth.Origin.Nonce)
	sigHash := cryptoprim.SHA512_256(presign.Bytes())

	sig, err := signRecoverable(privateKey, sigHash)
	if err != nil {
		return err
	}
	tx.Auth.Origin.Signature = sig
	tx.Auth.Origin.signed = true
	return nil
}

// PrepareSponsor installs the sponsor's identity, nonce, and fee into a
// sponsored transaction's placeholder sponsor spending condition, in
// preparation for SignSponsor.
func (tx *Transaction) PrepareSponsor(sponsorPubKey []byte, nonce, fee uint64) error {
	if tx.Auth.Sponsor == nil {
		return coreerrors.New("NOT_SPONSORED", "transaction has no sponsor spending condition to prepare")
	}
	tx.Auth.Sponsor.Signer = hash160OfCompressedPubKey(sponsorPubKey)
	tx.Auth.Sponsor.Nonce = nonce
	tx.Auth.Sponsor.Fee = fee
	return nil
}

// SignSponsor signs a sponsored transaction's sponsor spending condition,
// given the nonce and fee already set on tx.Auth.Sponsor by the caller. The
// origin must already be signed: the sponsor's presign hash commits to the
// transaction as already signed by the origin.
func (tx *Transaction) SignSponsor(privateKey []byte) error {
	if tx.Auth.Sponsor == nil {
		return coreerrors.New("NOT_SPONSORED", "transaction has no sponsor spending condition to sign")
	}
	if !tx.Auth.Origin.signed {
		return coreerrors.New("ORIGIN_UNSIGNED", "origin must be signed before the sponsor")
	}
	signedOrigin, err := tx.serializeWithZeroedSignature(true)
	if err != nil {
		return err
	}
	initial := cryptoprim.SHA512_256(signedOrigin)

	presign := new(buffer)
	presign.raw(initial[:])
	presign.u8(byte(tx.Auth.kind()))
	presign.u64(tx.Auth.Sponsor.Fee)
	presign.u64(tx.Auth.Sponsor.Nonce)
	sigHash := cryptoprim.SHA512_256(presign.Bytes())

	sig, err := signRecoverable(privateKey, sigHash)
	if err != nil {
		return err
	}
	tx.Auth.Sponsor.Signature = sig
	tx.Auth.Sponsor.signed = true
	return nil
}

// signRecoverable signs hash and returns a Stacks MessageSignature: a
// 1-byte recovery id followed by r||s (65 bytes total): the recovery byte
// leads, unlike the r||s||v layout internal/sigservice uses for plain Stacks
// and SIP-018 message signing.
func signRecoverable(privateKey []byte, hash [32]byte) ([spendingConditionSignatureLen]byte, error) {
	var out [spendingConditionSignatureLen]byte
	r, s, recID, err := cryptoprim.SignRecoverable(privateKey, hash[:])
	if err != nil {
		return out, err
	}
	out[0] = recID
	copy(out[1:33], r)
	copy(out[33:65], s)
	return out, nil
}

// hash160OfCompressedPubKey derives the P2PKH signer hash the spending
// condition commits to.
func hash160OfCompressedPubKey(pubKey []byte) []byte {
	return cryptoprim.Hash160(pubKey)
}
