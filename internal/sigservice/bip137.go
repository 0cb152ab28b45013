// Package sigservice implements the four signing standards the wallet
// exposes: BIP-137 Bitcoin message signing, Stacks plain-text signing,
// SIP-018 structured-data signing, and BIP-340 Schnorr taproot signing.
package sigservice

import (
	"encoding/base64"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// bitcoinMessagePrefix is prepended to every message before hashing, per the
// long-standing Bitcoin Core "signmessage" convention BIP-137 builds on.
const bitcoinMessagePrefix = "\x18Bitcoin Signed Message:\n"

// addressHeaderOffset is BIP-137's address-type-specific header byte
// extension on top of the canonical 27+recId(+4 for compressed) encoding.
// Every wallet account in this module is native SegWit P2WPKH, so the +12
// offset is the only one this package produces or accepts; legacy and
// P2SH-wrapped variants are not addresses this wallet derives.
const addressHeaderOffset = 12

func bitcoinMessageHash(message string) [32]byte {
	payload := append([]byte(bitcoinMessagePrefix), encodeVarInt(uint64(len(message)))...)
	payload = append(payload, []byte(message)...)
	return cryptoprim.DoubleSHA256(payload)
}

func encodeVarInt(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		return []byte{0xfd, byte(n), byte(n >> 8)}
	case n <= 0xffffffff:
		return []byte{0xfe, byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
	default:
		return []byte{0xff,
			byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24),
			byte(n >> 32), byte(n >> 40), byte(n >> 48), byte(n >> 56),
		}
	}
}

// SignBitcoinMessage signs message with the Bitcoin P2WPKH private key,
// returning the base64-encoded canonical 65-byte header||r||s blob.
func SignBitcoinMessage(btcPrivateKey []byte, message string) (string, error) {
	hash := bitcoinMessageHash(message)
	r, s, recID, err := cryptoprim.SignRecoverable(btcPrivateKey, hash[:])
	if err != nil {
		return "", err
	}

	sig := make([]byte, 65)
	sig[0] = 27 + recID + addressHeaderOffset
	copy(sig[1:33], r)
	copy(sig[33:65], s)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyBitcoinMessage recovers the signer's public key from sigBase64,
// derives its P2WPKH address, and compares it to expectedAddress.
func VerifyBitcoinMessage(message, sigBase64, expectedAddress, hrp string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(sigBase64)
	if err != nil {
		return false, coreerrors.Wrap(err, "decoding base64 signature")
	}
	if len(sig) != 65 {
		return false, coreerrors.New("INVALID_SIGNATURE", "signature must be 65 bytes")
	}

	header := sig[0]
	if header < 27+addressHeaderOffset || header > 27+addressHeaderOffset+3 {
		return false, coreerrors.New("INVALID_SIGNATURE", "header byte out of native-segwit range")
	}
	recID := header - 27 - addressHeaderOffset

	hash := bitcoinMessageHash(message)
	pubKey, err := cryptoprim.RecoverCompressedPubKey(hash[:], sig[1:33], sig[33:65], recID)
	if err != nil {
		return false, err
	}

	program := cryptoprim.Hash160(pubKey)
	address, err := cryptoprim.EncodeSegwitAddress(hrp, 0, program)
	if err != nil {
		return false, err
	}
	return address == expectedAddress, nil
}
