// Package cryptoprim provides the dependency-minimal cryptographic primitives
// the rest of the core is built on: AES-256-GCM, PBKDF2/scrypt KDFs, hashes,
// secp256k1 ECDSA with recovery, BIP-340 Schnorr, bech32/bech32m, base58check,
// and the Stacks c32 address alphabet.
package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// NonceSize is the GCM nonce (IV) length in bytes.
const NonceSize = 12

// TagSize is the GCM authentication tag length in bytes.
const TagSize = 16

// AESGCMEncrypt encrypts plaintext with AES-256-GCM under key and iv, returning
// the ciphertext and the 16-byte authentication tag separately, since the
// on-disk encrypted blob stores them as distinct fields.
func AESGCMEncrypt(key, iv, plaintext []byte) (ciphertext, tag []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, coreerrors.New("INVALID_KEY_SIZE", "AES key must be 32 bytes")
	}
	if len(iv) != NonceSize {
		return nil, nil, coreerrors.New("INVALID_NONCE_SIZE", "GCM nonce must be 12 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, coreerrors.Wrap(err, "creating AES cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, nil, coreerrors.Wrap(err, "creating GCM mode")
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ct := sealed[:len(sealed)-TagSize]
	authTag := sealed[len(sealed)-TagSize:]
	return ct, authTag, nil
}

// AESGCMDecrypt decrypts ciphertext+tag with AES-256-GCM under key and iv. A
// tag mismatch (tampering, or the wrong key) returns coreerrors.ErrAuthFailed.
func AESGCMDecrypt(key, iv, ciphertext, tag []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, coreerrors.New("INVALID_KEY_SIZE", "AES key must be 32 bytes")
	}
	if len(iv) != NonceSize {
		return nil, coreerrors.New("INVALID_NONCE_SIZE", "GCM nonce must be 12 bytes")
	}
	if len(tag) != TagSize {
		return nil, coreerrors.ErrAuthFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, coreerrors.Wrap(err, "creating AES cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, coreerrors.Wrap(err, "creating GCM mode")
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, coreerrors.ErrAuthFailed
	}
	return plaintext, nil
}
