// Package ordinal extracts ordinal inscription envelopes from the witness
// scripts of reveal transactions. It is read-only and has no network
// dependency: given raw reveal transaction bytes it needs nothing else to
// recover the inscribed content, the inverse of the envelope construction in
// internal/btctx.
package ordinal

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Envelope is one parsed ordinal inscription.
type Envelope struct {
	ContentType     string
	Body            []byte
	Cursed          bool
	Pointer         *uint64
	Parent          []byte
	Metadata        []byte
	Metaprotocol    string
	ContentEncoding string
	Delegate        []byte
	Rune            []byte
}

const (
	tagContentType     = 1
	tagPointer         = 2
	tagParent          = 3
	tagMetadata        = 5
	tagMetaprotocol    = 7
	tagContentEncoding = 9
	tagDelegate        = 11
	tagRune            = 13
	tagBody            = 0
)

// ParseRevealHex decodes a reveal transaction's hex wire format and extracts
// every ordinal envelope from its inputs' witness scripts.
func ParseRevealHex(txHex string) ([]Envelope, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding transaction hex")
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, coreerrors.Wrap(err, "parsing transaction")
	}

	var out []Envelope
	for inputIndex, in := range tx.TxIn {
		if len(in.Witness) < 2 {
			continue
		}
		// The witness script (the revealed tapscript) is always the
		// second-to-last witness item; the last is the control block.
		script := in.Witness[len(in.Witness)-2]
		envs, perr := ParseWitnessScript(script)
		if perr != nil {
			continue
		}
		for i := range envs {
			envs[i].Cursed = inputIndex > 0
		}
		out = append(out, envs...)
	}
	return out, nil
}

// ParseWitnessScript scans a single witness script for ordinal envelopes:
// the pattern OP_FALSE OP_IF "ord" <tagged fields> OP_ENDIF. A script may
// contain at most one envelope (the ordinals protocol does not nest them),
// but ParseWitnessScript returns a slice for symmetry with ParseRevealHex.
func ParseWitnessScript(script []byte) ([]Envelope, error) {
	tokens, err := tokenize(script)
	if err != nil {
		return nil, err
	}

	start := -1
	for i := 0; i+2 < len(tokens); i++ {
		if tokens[i].op == txscript.OP_FALSE && tokens[i+1].op == txscript.OP_IF && bytes.Equal(tokens[i+2].data, []byte("ord")) {
			start = i + 3
			break
		}
	}
	if start < 0 {
		return nil, coreerrors.New("NOT_FOUND", "no ordinal envelope found in witness script")
	}

	env := Envelope{}
	i := start
	for i < len(tokens) {
		tok := tokens[i]
		if tok.op == txscript.OP_ENDIF {
			break
		}

		tag, ok := smallInt(tok)
		if !ok {
			return nil, coreerrors.New("VALIDATION_ERROR", "malformed envelope tag")
		}
		i++

		if tag == tagBody {
			for i < len(tokens) && tokens[i].op != txscript.OP_ENDIF {
				env.Body = append(env.Body, tokens[i].data...)
				i++
			}
			break
		}

		if i >= len(tokens) {
			return nil, coreerrors.New("VALIDATION_ERROR", "envelope tag missing value")
		}
		value := tokens[i].data
		i++

		switch tag {
		case tagContentType:
			env.ContentType = string(value)
		case tagPointer:
			p := decodeLEUint64(value)
			env.Pointer = &p
		case tagParent:
			env.Parent = value
		case tagMetadata:
			env.Metadata = value
		case tagMetaprotocol:
			env.Metaprotocol = string(value)
		case tagContentEncoding:
			env.ContentEncoding = string(value)
		case tagDelegate:
			env.Delegate = value
		case tagRune:
			env.Rune = value
		}
	}

	return []Envelope{env}, nil
}

type token struct {
	op   byte
	data []byte
}

// tokenize walks a script's disassembled opcode stream into a flat list of
// (opcode, pushed-data) tokens, ignoring the specific push-opcode used (the
// ordinals protocol mixes OP_DATA_N, OP_PUSHDATA1/2/4, and small-int pushes).
func tokenize(script []byte) ([]token, error) {
	var out []token
	tkz := txscript.MakeScriptTokenizer(0, script)
	for tkz.Next() {
		op, data := tkz.Opcode(), tkz.Data()
		// A one-byte push of 1..16 or 0x81 is encoded as OP_1..OP_16 or
		// OP_1NEGATE with no data bytes; restore the pushed byte.
		switch {
		case op >= txscript.OP_1 && op <= txscript.OP_16:
			data = []byte{op - txscript.OP_1 + 1}
		case op == txscript.OP_1NEGATE:
			data = []byte{0x81}
		}
		out = append(out, token{op: op, data: data})
	}
	if err := tkz.Err(); err != nil {
		return nil, coreerrors.Wrap(err, "tokenizing script")
	}
	return out, nil
}

// smallInt recognizes both OP_0/OP_1-OP_16 and minimal-push encodings of a
// tag number, as txscript.ScriptBuilder.AddInt64 may emit either depending
// on the tag's value.
func smallInt(tok token) (int, bool) {
	switch {
	case tok.op == txscript.OP_0:
		return 0, true
	case tok.op >= txscript.OP_1 && tok.op <= txscript.OP_16:
		return int(tok.op-txscript.OP_1) + 1, true
	case tok.op <= txscript.OP_PUSHDATA4 && len(tok.data) <= 8:
		return int(decodeLEUint64(tok.data)), true
	default:
		return 0, false
	}
}

func decodeLEUint64(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
