package btctx

import (
	"github.com/btcsuite/btcd/txscript"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// maxScriptElementSize is Bitcoin's consensus limit on a single script push.
// A body larger than this must be split across multiple OP_0-tagged pushes.
const maxScriptElementSize = 520

// Envelope tags, per the ordinal inscription protocol: a tag byte (pushed as
// a Script small integer) followed by its value, terminated by tag 0 (body)
// whose remaining pushes are concatenated until OP_ENDIF.
const (
	envelopeTagContentType     = 1
	envelopeTagPointer         = 2
	envelopeTagParent          = 3
	envelopeTagMetadata        = 5
	envelopeTagMetaprotocol    = 7
	envelopeTagContentEncoding = 9
	envelopeTagDelegate        = 11
	envelopeTagRune            = 13
	envelopeTagBody            = 0
)

// Inscription is the tagged content a reveal transaction's witness script
// commits to.
type Inscription struct {
	ContentType     string
	Body            []byte
	Pointer         *uint64
	Parent          []byte
	Metadata        []byte
	Metaprotocol    string
	ContentEncoding string
	Delegate        []byte
	Rune            []byte
}

// buildRevealScript assembles the script a commit output's taproot leaf
// commits to: the revealer's x-only public key followed by OP_CHECKSIG, then
// the ordinal envelope (OP_FALSE OP_IF "ord" <tagged fields> OP_ENDIF) for
// insc. Body is split across as many 520-byte pushes as required.
func buildRevealScript(internalXOnlyPubKey []byte, insc Inscription) ([]byte, error) {
	if len(internalXOnlyPubKey) != 32 {
		return nil, coreerrors.New("INVALID_PUBLIC_KEY", "internal key must be a 32-byte x-only public key")
	}

	b := txscript.NewScriptBuilder().
		AddData(internalXOnlyPubKey).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_FALSE).
		AddOp(txscript.OP_IF).
		AddData([]byte("ord"))

	if insc.ContentType != "" {
		b = b.AddInt64(envelopeTagContentType).AddData([]byte(insc.ContentType))
	}
	if insc.Pointer != nil {
		b = b.AddInt64(envelopeTagPointer).AddData(encodeLEUint64(*insc.Pointer))
	}
	if len(insc.Parent) > 0 {
		b = b.AddInt64(envelopeTagParent).AddData(insc.Parent)
	}
	if len(insc.Metadata) > 0 {
		b = b.AddInt64(envelopeTagMetadata).AddData(insc.Metadata)
	}
	if insc.Metaprotocol != "" {
		b = b.AddInt64(envelopeTagMetaprotocol).AddData([]byte(insc.Metaprotocol))
	}
	if insc.ContentEncoding != "" {
		b = b.AddInt64(envelopeTagContentEncoding).AddData([]byte(insc.ContentEncoding))
	}
	if len(insc.Delegate) > 0 {
		b = b.AddInt64(envelopeTagDelegate).AddData(insc.Delegate)
	}
	if len(insc.Rune) > 0 {
		b = b.AddInt64(envelopeTagRune).AddData(insc.Rune)
	}

	b = b.AddInt64(envelopeTagBody)
	for offset := 0; offset < len(insc.Body); offset += maxScriptElementSize {
		end := offset + maxScriptElementSize
		if end > len(insc.Body) {
			end = len(insc.Body)
		}
		b = b.AddData(insc.Body[offset:end])
	}
	if len(insc.Body) == 0 {
		b = b.AddData(nil)
	}

	b = b.AddOp(txscript.OP_ENDIF)
	return b.Script()
}

// encodeLEUint64 trims trailing zero bytes off a little-endian encoding of v,
// the minimal-push form the ordinals protocol uses for numeric tag values.
func encodeLEUint64(v uint64) []byte {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(v)
		v >>= 8
	}
	n := 8
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	return buf[:n]
}
