package cryptoprim

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for Hash160 (BIP-141 script hashing)
	"golang.org/x/crypto/sha3"
)

// SHA256 returns the single SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// DoubleSHA256 returns SHA256(SHA256(data)), Bitcoin's standard digest used
// for txids, block hashes, and base58check/bech32 checksums upstream of the
// library encodings in this package.
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// SHA512 returns the SHA-512 digest of data, used by BIP-39 seed derivation
// and BIP-32 master key generation.
func SHA512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// SHA512_256 returns the SHA-512/256 digest of data: the distinct truncated
// variant (its own IV, not SHA-512 output sliced to 32 bytes) that Stacks
// uses for transaction and block IDs.
func SHA512_256(data []byte) [32]byte { //nolint:revive,stylecheck // matches the algorithm's standard name
	return sha512.Sum512_256(data)
}

// Hash160 returns RIPEMD160(SHA256(data)), Bitcoin's standard public-key/script
// hash used in P2PKH, P2SH, and P2WPKH.
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	hasher := ripemd160.New() //nolint:gosec // G401: RIPEMD-160 is the required Bitcoin script hash, not a security choice
	hasher.Write(sha[:])
	return hasher.Sum(nil)
}

// Keccak256 returns the Keccak-256 digest of data (pre-NIST SHA-3, as used by
// Ethereum addresses and, notably, by none of the Stacks/Bitcoin paths in this
// module; retained for the shared multi-chain derivation helpers it grounds).
func Keccak256(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}
