// Package clarity implements the Clarity Value Representation (CLARITY
// VERSION 2) binary codec: the byte-level encoding Stacks uses for contract
// arguments, SIP-018 structured data, and post-condition asset identifiers.
package clarity

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"sort"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Type IDs, per the Clarity wire format.
const (
	typeInt            byte = 0x00
	typeUInt           byte = 0x01
	typeBuffer         byte = 0x02
	typeBoolTrue       byte = 0x03
	typeBoolFalse      byte = 0x04
	typePrincipalStd   byte = 0x05
	typePrincipalContr byte = 0x06
	typeResponseOk     byte = 0x07
	typeResponseErr    byte = 0x08
	typeOptionalNone   byte = 0x09
	typeOptionalSome   byte = 0x0a
	typeList           byte = 0x0b
	typeTuple          byte = 0x0c
	typeStringASCII    byte = 0x0d
	typeStringUTF8     byte = 0x0e
)

// Value is the interface every Clarity value implements: self-describing
// binary encode/decode.
type Value interface {
	Encode() []byte
}

// Int is a signed 128-bit Clarity integer.
type Int struct{ V *big.Int }

// UInt is an unsigned 128-bit Clarity integer.
type UInt struct{ V *big.Int }

// Buffer is a Clarity byte buffer.
type Buffer struct{ V []byte }

// Bool is a Clarity boolean.
type Bool struct{ V bool }

// StandardPrincipal is a Clarity standard principal (address only).
type StandardPrincipal struct {
	Version byte
	Hash160 []byte
}

// ContractPrincipal is a Clarity contract principal (address.contract-name).
type ContractPrincipal struct {
	Version      byte
	Hash160      []byte
	ContractName string
}

// ResponseOk wraps a successful response value.
type ResponseOk struct{ V Value }

// ResponseErr wraps an error response value.
type ResponseErr struct{ V Value }

// OptionalNone is Clarity's `none`.
type OptionalNone struct{}

// OptionalSome wraps a present optional value.
type OptionalSome struct{ V Value }

// List is an ordered, homogeneous-by-convention Clarity list.
type List struct{ Items []Value }

// Tuple is a Clarity tuple; keys serialize in lexicographic order
// regardless of the order supplied here.
type Tuple struct{ Fields map[string]Value }

// StringASCII is a Clarity string-ascii value.
type StringASCII struct{ V string }

// StringUTF8 is a Clarity string-utf8 value.
type StringUTF8 struct{ V string }

func encode128(v *big.Int) []byte {
	buf := make([]byte, 16)
	bytes := v.Bytes()
	// Two's complement for negative ints is handled by the caller (Int.Encode).
	copy(buf[16-len(bytes):], bytes)
	return buf
}

// Encode implements Value.
func (i Int) Encode() []byte {
	v := new(big.Int).Set(i.V)
	if v.Sign() < 0 {
		// Two's complement over 128 bits: (2^128 + v).
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		v.Add(mod, v)
	}
	out := make([]byte, 17)
	out[0] = typeInt
	copy(out[1:], encode128(v))
	return out
}

// Encode implements Value.
func (u UInt) Encode() []byte {
	out := make([]byte, 17)
	out[0] = typeUInt
	copy(out[1:], encode128(u.V))
	return out
}

// Encode implements Value.
func (b Buffer) Encode() []byte {
	out := make([]byte, 0, 5+len(b.V))
	out = append(out, typeBuffer)
	out = appendUint32(out, uint32(len(b.V)))
	out = append(out, b.V...)
	return out
}

// Encode implements Value.
func (b Bool) Encode() []byte {
	if b.V {
		return []byte{typeBoolTrue}
	}
	return []byte{typeBoolFalse}
}

// Encode implements Value.
func (p StandardPrincipal) Encode() []byte {
	out := make([]byte, 0, 22)
	out = append(out, typePrincipalStd, p.Version)
	out = append(out, p.Hash160...)
	return out
}

// Encode implements Value.
func (p ContractPrincipal) Encode() []byte {
	out := make([]byte, 0, 23+len(p.ContractName))
	out = append(out, typePrincipalContr, p.Version)
	out = append(out, p.Hash160...)
	out = append(out, byte(len(p.ContractName)))
	out = append(out, []byte(p.ContractName)...)
	return out
}

// Encode implements Value.
func (r ResponseOk) Encode() []byte {
	return append([]byte{typeResponseOk}, r.V.Encode()...)
}

// Encode implements Value.
func (r ResponseErr) Encode() []byte {
	return append([]byte{typeResponseErr}, r.V.Encode()...)
}

// Encode implements Value.
func (OptionalNone) Encode() []byte { return []byte{typeOptionalNone} }

// Encode implements Value.
func (o OptionalSome) Encode() []byte {
	return append([]byte{typeOptionalSome}, o.V.Encode()...)
}

// Encode implements Value.
func (l List) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(typeList)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(l.Items)))
	buf.Write(lenBuf[:])
	for _, item := range l.Items {
		buf.Write(item.Encode())
	}
	return buf.Bytes()
}

// Encode implements Value. Tuple fields are written in lexicographic key
// order, per the Clarity canonical encoding.
func (t Tuple) Encode() []byte {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte(typeTuple)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(keys)))
	buf.Write(lenBuf[:])
	for _, k := range keys {
		buf.WriteByte(byte(len(k)))
		buf.WriteString(k)
		buf.Write(t.Fields[k].Encode())
	}
	return buf.Bytes()
}

// Encode implements Value.
func (s StringASCII) Encode() []byte {
	out := make([]byte, 0, 5+len(s.V))
	out = append(out, typeStringASCII)
	out = appendUint32(out, uint32(len(s.V)))
	out = append(out, []byte(s.V)...)
	return out
}

// Encode implements Value.
func (s StringUTF8) Encode() []byte {
	data := []byte(s.V)
	out := make([]byte, 0, 5+len(data))
	out = append(out, typeStringUTF8)
	out = appendUint32(out, uint32(len(data)))
	out = append(out, data...)
	return out
}

func appendUint32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

// Decode parses a single Clarity value from the front of data, returning it
// and the number of bytes consumed.
func Decode(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return nil, 0, coreerrors.New("INVALID_CLARITY_VALUE", "empty input")
	}

	switch data[0] {
	case typeInt:
		if len(data) < 17 {
			return nil, 0, shortErr()
		}
		v := new(big.Int).SetBytes(data[1:17])
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		half := new(big.Int).Rsh(mod, 1)
		if v.Cmp(half) >= 0 {
			v.Sub(v, mod)
		}
		return Int{V: v}, 17, nil

	case typeUInt:
		if len(data) < 17 {
			return nil, 0, shortErr()
		}
		return UInt{V: new(big.Int).SetBytes(data[1:17])}, 17, nil

	case typeBuffer:
		if len(data) < 5 {
			return nil, 0, shortErr()
		}
		n := binary.BigEndian.Uint32(data[1:5])
		if len(data) < int(5+n) {
			return nil, 0, shortErr()
		}
		buf := make([]byte, n)
		copy(buf, data[5:5+n])
		return Buffer{V: buf}, int(5 + n), nil

	case typeBoolTrue:
		return Bool{V: true}, 1, nil
	case typeBoolFalse:
		return Bool{V: false}, 1, nil

	case typePrincipalStd:
		if len(data) < 22 {
			return nil, 0, shortErr()
		}
		hash := make([]byte, 20)
		copy(hash, data[2:22])
		return StandardPrincipal{Version: data[1], Hash160: hash}, 22, nil

	case typePrincipalContr:
		if len(data) < 23 {
			return nil, 0, shortErr()
		}
		hash := make([]byte, 20)
		copy(hash, data[2:22])
		nameLen := int(data[22])
		if len(data) < 23+nameLen {
			return nil, 0, shortErr()
		}
		name := string(data[23 : 23+nameLen])
		return ContractPrincipal{Version: data[1], Hash160: hash, ContractName: name}, 23 + nameLen, nil

	case typeResponseOk:
		inner, n, err := Decode(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return ResponseOk{V: inner}, 1 + n, nil

	case typeResponseErr:
		inner, n, err := Decode(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return ResponseErr{V: inner}, 1 + n, nil

	case typeOptionalNone:
		return OptionalNone{}, 1, nil

	case typeOptionalSome:
		inner, n, err := Decode(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return OptionalSome{V: inner}, 1 + n, nil

	case typeList:
		if len(data) < 5 {
			return nil, 0, shortErr()
		}
		count := binary.BigEndian.Uint32(data[1:5])
		offset := 5
		items := make([]Value, 0, count)
		for i := uint32(0); i < count; i++ {
			item, n, err := Decode(data[offset:])
			if err != nil {
				return nil, 0, err
			}
			items = append(items, item)
			offset += n
		}
		return List{Items: items}, offset, nil

	case typeTuple:
		if len(data) < 5 {
			return nil, 0, shortErr()
		}
		count := binary.BigEndian.Uint32(data[1:5])
		offset := 5
		fields := make(map[string]Value, count)
		for i := uint32(0); i < count; i++ {
			if offset >= len(data) {
				return nil, 0, shortErr()
			}
			nameLen := int(data[offset])
			offset++
			if len(data) < offset+nameLen {
				return nil, 0, shortErr()
			}
			name := string(data[offset : offset+nameLen])
			offset += nameLen
			value, n, err := Decode(data[offset:])
			if err != nil {
				return nil, 0, err
			}
			fields[name] = value
			offset += n
		}
		return Tuple{Fields: fields}, offset, nil

	case typeStringASCII:
		if len(data) < 5 {
			return nil, 0, shortErr()
		}
		n := binary.BigEndian.Uint32(data[1:5])
		if len(data) < int(5+n) {
			return nil, 0, shortErr()
		}
		return StringASCII{V: string(data[5 : 5+n])}, int(5 + n), nil

	case typeStringUTF8:
		if len(data) < 5 {
			return nil, 0, shortErr()
		}
		n := binary.BigEndian.Uint32(data[1:5])
		if len(data) < int(5+n) {
			return nil, 0, shortErr()
		}
		return StringUTF8{V: string(data[5 : 5+n])}, int(5 + n), nil

	default:
		return nil, 0, coreerrors.New("INVALID_CLARITY_VALUE", "unknown type id")
	}
}

func shortErr() error {
	return coreerrors.New("INVALID_CLARITY_VALUE", "truncated value")
}
