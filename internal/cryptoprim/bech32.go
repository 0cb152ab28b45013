package cryptoprim

import (
	"github.com/btcsuite/btcd/btcutil/bech32"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// EncodeSegwitAddress encodes a witness program as a bech32 (witness version
// 0, P2WPKH/P2WSH) or bech32m (witness version 1+, P2TR) address, per BIP-173
// / BIP-350.
func EncodeSegwitAddress(hrp string, witnessVersion byte, program []byte) (string, error) {
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", coreerrors.Wrap(err, "converting witness program bit groups")
	}

	data := make([]byte, 0, len(converted)+1)
	data = append(data, witnessVersion)
	data = append(data, converted...)

	var encoded string
	if witnessVersion == 0 {
		encoded, err = bech32.Encode(hrp, data)
	} else {
		encoded, err = bech32.EncodeM(hrp, data)
	}
	if err != nil {
		return "", coreerrors.Wrap(err, "bech32-encoding segwit address")
	}
	return encoded, nil
}

// DecodeSegwitAddress reverses EncodeSegwitAddress, returning the witness
// version and raw program bytes.
func DecodeSegwitAddress(address string) (hrp string, witnessVersion byte, program []byte, err error) {
	hrp, data, encoding, err := bech32.DecodeGeneric(address)
	if err != nil {
		return "", 0, nil, coreerrors.Wrap(err, "decoding bech32 address")
	}
	if len(data) == 0 {
		return "", 0, nil, coreerrors.New("INVALID_ADDRESS", "empty bech32 payload")
	}

	witnessVersion = data[0]
	if (witnessVersion == 0 && encoding != bech32.Version0) || (witnessVersion != 0 && encoding != bech32.VersionM) {
		return "", 0, nil, coreerrors.New("INVALID_ADDRESS", "witness version/encoding mismatch")
	}

	program, err = bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return "", 0, nil, coreerrors.Wrap(err, "converting witness program bit groups")
	}
	return hrp, witnessVersion, program, nil
}
