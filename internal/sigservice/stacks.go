package sigservice

import (
	"encoding/hex"
	"math/big"

	"github.com/aibtcdev/aibtc-core/internal/clarity"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// stacksMessagePrefix is Stacks' equivalent of Bitcoin's signed-message
// prefix, used for plain-text and SIP-018 message signing alike.
const stacksMessagePrefix = "\x17Stacks Signed Message:\n"

func stacksMessageHash(message []byte) [32]byte {
	payload := append([]byte(stacksMessagePrefix), encodeVarInt(uint64(len(message)))...)
	payload = append(payload, message...)
	return cryptoprim.SHA256(payload)
}

// signRSV signs hash with a Stacks private key, returning the 65-byte
// r||s||v ("RSV") signature hex-encoded. v is the raw recovery ID (0-3);
// Stacks does not use Bitcoin's header-byte offset scheme.
func signRSV(privateKey []byte, hash [32]byte) (string, error) {
	r, s, recID, err := cryptoprim.SignRecoverable(privateKey, hash[:])
	if err != nil {
		return "", err
	}
	sig := make([]byte, 65)
	copy(sig[0:32], r)
	copy(sig[32:64], s)
	sig[64] = recID
	return hex.EncodeToString(sig), nil
}

func recoverFromRSV(hash [32]byte, rsvHex string) ([]byte, error) {
	sig, err := hex.DecodeString(rsvHex)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding rsv signature")
	}
	if len(sig) != 65 {
		return nil, coreerrors.New("INVALID_SIGNATURE", "rsv signature must be 65 bytes")
	}
	return cryptoprim.RecoverCompressedPubKey(hash[:], sig[0:32], sig[32:64], sig[64])
}

// SignStacksMessage signs a plain-text message with the Stacks private key,
// returning the RSV signature hex-encoded.
func SignStacksMessage(stxPrivateKey []byte, message string) (string, error) {
	hash := stacksMessageHash([]byte(message))
	return signRSV(stxPrivateKey, hash)
}

// VerifyStacksMessage recovers the signer's public key from an RSV
// signature, derives its c32 address, and compares it to expectedAddress.
func VerifyStacksMessage(message, rsvHex, expectedAddress string, addressVersion byte) (bool, error) {
	hash := stacksMessageHash([]byte(message))
	pubKey, err := recoverFromRSV(hash, rsvHex)
	if err != nil {
		return false, err
	}
	address := cryptoprim.C32CheckEncode(addressVersion, cryptoprim.Hash160(pubKey))
	return address == expectedAddress, nil
}

// SIP018Domain identifies the contract/app context a structured message is
// scoped to, preventing a signature over one domain being replayed in another.
type SIP018Domain struct {
	Name    string
	Version string
	ChainID uint32
}

func (d SIP018Domain) tuple() clarity.Tuple {
	return clarity.Tuple{Fields: map[string]clarity.Value{
		"name":     clarity.StringASCII{V: d.Name},
		"version":  clarity.StringASCII{V: d.Version},
		"chain-id": clarity.UInt{V: new(big.Int).SetUint64(uint64(d.ChainID))},
	}}
}

// SIP018Hashes are the two hashes SIP-018 exposes to callers: they are the
// same value, kept as distinct named fields because "verification" is the
// name off-chain ecdsaRecover callers expect and "encoded" is the name
// Clarity's secp256k1-recover? callers expect.
type SIP018Hashes struct {
	Verification [32]byte
	Encoded      [32]byte
}

// HashSIP018 computes the domain-scoped structured-data hash for value,
// per SIP-018.
func HashSIP018(domain SIP018Domain, value clarity.Value) SIP018Hashes {
	domainHash := cryptoprim.SHA256(domain.tuple().Encode())
	messageHash := cryptoprim.SHA256(value.Encode())

	payload := append([]byte("SIP018"), domainHash[:]...)
	payload = append(payload, messageHash[:]...)
	hashToSign := cryptoprim.SHA256(payload)

	return SIP018Hashes{Verification: hashToSign, Encoded: hashToSign}
}

// SignSIP018 signs a SIP-018 structured-data hash with the Stacks private
// key, returning the RSV signature hex-encoded.
func SignSIP018(stxPrivateKey []byte, domain SIP018Domain, value clarity.Value) (string, error) {
	hashes := HashSIP018(domain, value)
	return signRSV(stxPrivateKey, hashes.Verification)
}

// VerifySIP018 recovers the signer's public key from an RSV signature over
// the domain-scoped hash and compares its c32 address to expectedAddress.
func VerifySIP018(domain SIP018Domain, value clarity.Value, rsvHex, expectedAddress string, addressVersion byte) (bool, error) {
	hashes := HashSIP018(domain, value)
	pubKey, err := recoverFromRSV(hashes.Verification, rsvHex)
	if err != nil {
		return false, err
	}
	address := cryptoprim.C32CheckEncode(addressVersion, cryptoprim.Hash160(pubKey))
	return address == expectedAddress, nil
}
