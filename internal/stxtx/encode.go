package stxtx

import (
	"bytes"
	"encoding/binary"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// buffer is a small append-only byte builder, mirroring the style used by
// internal/clarity's encoder functions.
type buffer struct {
	bytes.Buffer
}

func (b *buffer) u8(v byte) {
	b.WriteByte(v)
}

func (b *buffer) u32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (b *buffer) u64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}

func (b *buffer) raw(v []byte) {
	b.Write(v)
}

// lpString writes a length-prefixed ASCII string: a single length byte
// followed by the raw bytes, the encoding Stacks uses for contract and
// function names (max 128 bytes).
func (b *buffer) lpString(s string) error {
	if len(s) > 128 {
		return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"field":  "name",
			"reason": "exceeds 128 bytes",
		})
	}
	b.u8(byte(len(s)))
	b.WriteString(s)
	return nil
}
