package cryptoprim

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// XOnlyPubKey returns the 32-byte x-only encoding of sk's public key, as used
// by BIP-340 Schnorr signatures and P2TR output keys.
func XOnlyPubKey(sk []byte) ([]byte, error) {
	priv, err := PrivateKeyFromBytes(sk)
	if err != nil {
		return nil, err
	}
	return priv.PubKey().SerializeCompressed()[1:], nil
}

// SignSchnorr produces a BIP-340 Schnorr signature over a 32-byte message
// (for key-path taproot spends, the BIP-341 sighash; for SIP-018/message
// signing flows that opt into Schnorr, the applicable structured hash).
// When auxRand is non-nil it is used as the 32 bytes of fresh auxiliary
// randomness mixed into the nonce per BIP-340; nil lets the library derive
// the nonce deterministically (RFC 6979).
func SignSchnorr(sk, msgHash []byte, auxRand *[32]byte) ([]byte, error) {
	if len(msgHash) != 32 {
		return nil, coreerrors.New("INVALID_HASH_SIZE", "message hash must be 32 bytes")
	}
	priv, err := PrivateKeyFromBytes(sk)
	if err != nil {
		return nil, err
	}

	var opts []schnorr.SignOption
	if auxRand != nil {
		opts = append(opts, schnorr.CustomNonce(*auxRand))
	}

	sig, err := schnorr.Sign(priv, msgHash, opts...)
	if err != nil {
		return nil, coreerrors.Wrap(err, "signing with schnorr")
	}
	return sig.Serialize(), nil
}

// VerifySchnorr verifies a 64-byte BIP-340 signature over msgHash against a
// 32-byte x-only public key.
func VerifySchnorr(xOnlyPubKey, msgHash, sig []byte) (bool, error) {
	if len(xOnlyPubKey) != 32 {
		return false, coreerrors.New("INVALID_PUBLIC_KEY", "x-only public key must be 32 bytes")
	}
	pub, err := schnorr.ParsePubKey(xOnlyPubKey)
	if err != nil {
		return false, coreerrors.Wrap(err, "parsing x-only public key")
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, coreerrors.Wrap(err, "parsing schnorr signature")
	}
	return parsed.Verify(msgHash, pub), nil
}

// TweakedOutputKey computes the BIP-341 taproot output key: the internal key
// tweaked by the tagged hash of (internalKey || merkleRoot). An empty
// merkleRoot produces a key-path-only (script-less) taproot output.
func TweakedOutputKey(internalXOnly, merkleRoot []byte) ([]byte, error) {
	if len(internalXOnly) != 32 {
		return nil, coreerrors.New("INVALID_PUBLIC_KEY", "internal key must be 32 bytes")
	}
	pub, err := schnorr.ParsePubKey(internalXOnly)
	if err != nil {
		return nil, coreerrors.Wrap(err, "parsing internal key")
	}

	outputKey := txscript.ComputeTaprootOutputKey(pub, merkleRoot)
	return outputKey.SerializeCompressed()[1:], nil
}

// TweakedOutputKeyParity is TweakedOutputKey plus the output key's Y-coordinate
// parity, needed by callers constructing a BIP-341 control block for a
// script-path spend.
func TweakedOutputKeyParity(internalXOnly, merkleRoot []byte) (outputXOnly []byte, yIsOdd bool, err error) {
	if len(internalXOnly) != 32 {
		return nil, false, coreerrors.New("INVALID_PUBLIC_KEY", "internal key must be 32 bytes")
	}
	pub, err := schnorr.ParsePubKey(internalXOnly)
	if err != nil {
		return nil, false, coreerrors.Wrap(err, "parsing internal key")
	}

	outputKey := txscript.ComputeTaprootOutputKey(pub, merkleRoot)
	compressed := outputKey.SerializeCompressed()
	return compressed[1:], compressed[0] == 0x03, nil
}
