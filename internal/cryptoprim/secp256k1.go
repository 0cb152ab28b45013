package cryptoprim

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// compactSigMagicOffset is btcec's base header byte for a compact,
// recoverable ECDSA signature over a compressed public key: header values
// 31-34 correspond to recovery IDs 0-3. Address-type-specific header
// encodings (BIP-137's segwit extensions) are layered on top of this by
// internal/sigservice; this package only ever produces and consumes the
// canonical compressed-key encoding.
const compactSigMagicOffset = 31

// PrivateKeyFromBytes parses a 32-byte scalar into a secp256k1 private key.
func PrivateKeyFromBytes(sk []byte) (*btcec.PrivateKey, error) {
	if len(sk) != 32 {
		return nil, coreerrors.New("INVALID_PRIVATE_KEY", "private key must be 32 bytes")
	}
	key := secp256k1PrivKeyFromBytes(sk)
	return key, nil
}

func secp256k1PrivKeyFromBytes(sk []byte) *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(sk)
	return priv
}

// SignRecoverable produces an ECDSA signature over msgHash (expected to
// already be a 32-byte digest) deterministically per RFC 6979, returning the
// low-S-normalized (r, s) and a recovery ID in [0,3] identifying which of the
// four candidate public keys recovers to the signer's compressed pubkey.
func SignRecoverable(sk []byte, msgHash []byte) (r, s []byte, recID byte, err error) {
	if len(msgHash) != 32 {
		return nil, nil, 0, coreerrors.New("INVALID_HASH_SIZE", "message hash must be 32 bytes")
	}
	priv, parseErr := PrivateKeyFromBytes(sk)
	if parseErr != nil {
		return nil, nil, 0, parseErr
	}

	sig := ecdsa.SignCompact(priv, msgHash, true)
	if len(sig) != 65 {
		return nil, nil, 0, coreerrors.New("SIGN_FAILED", "unexpected compact signature length")
	}

	header := sig[0]
	recID = header - compactSigMagicOffset
	r = sig[1:33]
	s = sig[33:65]
	return r, s, recID, nil
}

// RecoverCompressedPubKey recovers the 33-byte compressed public key that
// produced (r, s, recID) over msgHash.
func RecoverCompressedPubKey(msgHash, r, s []byte, recID byte) ([]byte, error) {
	if len(msgHash) != 32 {
		return nil, coreerrors.New("INVALID_HASH_SIZE", "message hash must be 32 bytes")
	}
	if recID > 3 {
		return nil, coreerrors.New("INVALID_RECOVERY_ID", "recovery id must be 0-3")
	}
	if len(r) != 32 || len(s) != 32 {
		return nil, coreerrors.New("INVALID_SIGNATURE", "r and s must be 32 bytes each")
	}

	compact := make([]byte, 65)
	compact[0] = compactSigMagicOffset + recID
	copy(compact[1:33], r)
	copy(compact[33:65], s)

	pub, _, err := ecdsa.RecoverCompact(compact, msgHash)
	if err != nil {
		return nil, coreerrors.Wrap(err, "recovering public key")
	}
	return pub.SerializeCompressed(), nil
}

// VerifyECDSA verifies a DER-independent (r, s) signature over msgHash against
// a compressed public key. An r or s that overflows the group order reports
// false; high-S signatures are not rejected.
func VerifyECDSA(pubKeyCompressed, msgHash, r, s []byte) (bool, error) {
	pub, err := btcec.ParsePubKey(pubKeyCompressed)
	if err != nil {
		return false, coreerrors.Wrap(err, "parsing public key")
	}

	var rScalar, sScalar btcec.ModNScalar
	if rScalar.SetByteSlice(r) {
		return false, nil // overflowed the group order
	}
	if sScalar.SetByteSlice(s) {
		return false, nil
	}

	sig := ecdsa.NewSignature(&rScalar, &sScalar)
	return sig.Verify(msgHash, pub), nil
}

// PublicKeyFromPrivate returns the 33-byte compressed public key for sk.
func PublicKeyFromPrivate(sk []byte) ([]byte, error) {
	priv, err := PrivateKeyFromBytes(sk)
	if err != nil {
		return nil, err
	}
	return priv.PubKey().SerializeCompressed(), nil
}
