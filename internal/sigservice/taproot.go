package sigservice

import (
	"encoding/hex"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
)

// SignTaprootKeyPath produces a BIP-340 Schnorr signature over msgHash using
// the taproot internal private key, hex-encoded. Signing happens with the
// untweaked internal key, per BIP-341 key-path-spend with no script tree:
// the tweak lives in the output key derivation, not in the signing key.
func SignTaprootKeyPath(taprootPrivateKey, msgHash []byte, auxRand *[32]byte) (string, error) {
	sig, err := cryptoprim.SignSchnorr(taprootPrivateKey, msgHash, auxRand)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// VerifyTaprootKeyPath verifies a hex-encoded BIP-340 Schnorr signature
// against the given x-only internal public key.
func VerifyTaprootKeyPath(internalXOnlyPubKey, msgHash []byte, sigHex string) (bool, error) {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, err
	}
	return cryptoprim.VerifySchnorr(internalXOnlyPubKey, msgHash, sig)
}
