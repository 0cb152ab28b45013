package cryptoprim

import (
	"github.com/btcsuite/btcd/btcutil/base58"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// EncodeBase58Check encodes payload with a version byte and a 4-byte
// double-SHA256 checksum, as used by legacy P2PKH/P2SH Bitcoin addresses and
// extended (xprv/xpub) keys.
func EncodeBase58Check(version byte, payload []byte) string {
	return base58.CheckEncode(payload, version)
}

// DecodeBase58Check reverses EncodeBase58Check, validating the checksum.
func DecodeBase58Check(encoded string) (version byte, payload []byte, err error) {
	payload, version, err = base58.CheckDecode(encoded)
	if err != nil {
		return 0, nil, coreerrors.Wrap(err, "decoding base58check")
	}
	return version, payload, nil
}
