package cryptoprim

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// SaltSize is the recommended random salt length for both KDFs.
const SaltSize = 16

// PBKDF2Iterations is the round count used for credential-store password
// hashing: PBKDF2-SHA256, 100,000 rounds.
const PBKDF2Iterations = 100_000

// Scrypt parameters used for wallet keystore encryption, deliberately far
// more expensive than the credential store's PBKDF2, since a keystore
// compromise exposes a seed rather than a single service credential.
const (
	ScryptN = 16384
	ScryptR = 8
	ScryptP = 1
)

// RandomSalt returns n cryptographically random bytes.
func RandomSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, coreerrors.Wrap(err, "generating random salt")
	}
	return salt, nil
}

// DeriveKeyPBKDF2 derives a 32-byte key from password and salt using
// PBKDF2-HMAC-SHA256 with PBKDF2Iterations rounds.
func DeriveKeyPBKDF2(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, PBKDF2Iterations, KeySize, sha256.New)
}

// DeriveKeyScrypt derives a 32-byte key from password and salt using scrypt
// with the package's fixed N/r/p cost parameters.
func DeriveKeyScrypt(password, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, ScryptN, ScryptR, ScryptP, KeySize)
	if err != nil {
		return nil, coreerrors.Wrap(err, "deriving scrypt key")
	}
	return key, nil
}
