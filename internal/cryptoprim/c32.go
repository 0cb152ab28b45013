package cryptoprim

import (
	"math/big"
	"strings"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// c32Alphabet is the Crockford-style base32 alphabet Stacks uses for c32check
// addresses. It excludes the letters I, L, O, U to avoid visual ambiguity and
// accidental profanity.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Stacks address version bytes.
const (
	StacksMainnetP2PKH byte = 22
	StacksMainnetP2SH  byte = 20
	StacksTestnetP2PKH byte = 26
	StacksTestnetP2SH  byte = 21
)

var c32AlphabetIndex = func() map[byte]int {
	idx := make(map[byte]int, len(c32Alphabet))
	for i := 0; i < len(c32Alphabet); i++ {
		idx[c32Alphabet[i]] = i
	}
	return idx
}()

// c32Encode base32-encodes data (big-endian) into the c32 alphabet, without
// padding or version/checksum framing.
func c32Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	leadingZeros := 0
	for _, b := range data {
		if b != 0 {
			break
		}
		leadingZeros++
	}

	n := new(big.Int).SetBytes(data)
	bigBase := big.NewInt(32)
	mod := new(big.Int)
	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, bigBase, mod)
		out = append(out, c32Alphabet[mod.Int64()])
	}

	// Reverse into big-endian digit order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return strings.Repeat(string(c32Alphabet[0]), leadingZeros) + string(out)
}

// c32Decode reverses c32Encode back into raw bytes.
func c32Decode(encoded string) ([]byte, error) {
	encoded = strings.ToUpper(encoded)
	if encoded == "" {
		return nil, nil
	}

	n := new(big.Int)
	bigBase := big.NewInt(32)
	leadingZeros := 0
	sawNonZero := false
	for i := 0; i < len(encoded); i++ {
		digit, ok := c32AlphabetIndex[encoded[i]]
		if !ok {
			return nil, coreerrors.New("INVALID_C32", "invalid c32 character")
		}
		if digit == 0 && !sawNonZero {
			leadingZeros++
		} else {
			sawNonZero = true
		}
		n.Mul(n, bigBase)
		n.Add(n, big.NewInt(int64(digit)))
	}

	raw := n.Bytes()
	out := make([]byte, leadingZeros+len(raw))
	copy(out[leadingZeros:], raw)
	return out, nil
}

// c32Checksum computes the 4-byte check value Stacks appends to version+payload
// before c32-encoding: the first 4 bytes of double-SHA256(version || payload).
func c32Checksum(version byte, payload []byte) []byte {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, version)
	buf = append(buf, payload...)
	sum := DoubleSHA256(buf)
	return sum[:4]
}

// C32CheckEncode encodes a Stacks c32check address: c32_version_char +
// c32check(payload), where payload is typically a 20-byte hash160.
func C32CheckEncode(version byte, payload []byte) string {
	checksum := c32Checksum(version, payload)
	body := make([]byte, 0, len(payload)+len(checksum))
	body = append(body, payload...)
	body = append(body, checksum...)

	versionChar := c32Alphabet[version%32]
	return "S" + string(versionChar) + c32Encode(body)
}

// C32CheckDecode reverses C32CheckEncode, validating the checksum.
func C32CheckDecode(address string) (version byte, payload []byte, err error) {
	address = strings.ToUpper(address)
	if len(address) < 3 || address[0] != 'S' {
		return 0, nil, coreerrors.New("INVALID_ADDRESS", "not a c32check address")
	}

	versionIdx, ok := c32AlphabetIndex[address[1]]
	if !ok {
		return 0, nil, coreerrors.New("INVALID_ADDRESS", "invalid c32check version character")
	}
	version = byte(versionIdx)

	decoded, err := c32Decode(address[2:])
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 4 {
		return 0, nil, coreerrors.New("INVALID_ADDRESS", "c32check payload too short")
	}

	payload = decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	expected := c32Checksum(version, payload)
	for i := range expected {
		if expected[i] != checksum[i] {
			return 0, nil, coreerrors.New("INVALID_ADDRESS", "c32check checksum mismatch")
		}
	}
	return version, payload, nil
}
