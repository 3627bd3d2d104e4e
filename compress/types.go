// Package compress implements the two-layer compressed-element engine:
// a modeling layer (byte reordering) composed over a coding layer
// (byte-stream transformation), each a pluggable, registry-selected
// variant, following the same registration pattern as the teacher's
// squashfs compression handlers (comp.go/comp_xz.go/comp_zstd.go).
package compress

import "errors"

// Known model variant codes (§3, "model info carries a variant tag").
const (
	ModelSTDIO uint16 = 1
)

// Known coder variant codes (§3, coder variants).
const (
	CoderNone    uint16 = 1
	CoderRLE     uint16 = 2
	CoderSkpHuff uint16 = 3
	CoderNBit    uint16 = 4
	// CoderXZ and CoderZSTD are additive, pack-grounded variants (see
	// DESIGN.md); registered only when built with the xz/zstd tags.
	CoderXZ   uint16 = 5
	CoderZSTD uint16 = 6
)

var (
	// ErrUnknownModel is returned when a header names a model code no
	// registered Model implements.
	ErrUnknownModel = errors.New("compress: unknown model variant")
	// ErrUnknownCoder is returned when a header names a coder code no
	// registered Coder implements.
	ErrUnknownCoder = errors.New("compress: unknown coder variant")
	// ErrBadNumType is returned when an NBIT header names a number-type
	// code the table cannot resolve to a byte width.
	ErrBadNumType = errors.New("compress: unresolvable NBIT number type")
	// ErrShortHeader is returned when a descriptor buffer is too small
	// to contain the fixed header fields or the coder's trailer.
	ErrShortHeader = errors.New("compress: short header")
	// ErrCannotRandomWrite is returned by Engine.Seek when a write
	// session attempts to seek anywhere but the current end of the
	// element (§4.E.2).
	ErrCannotRandomWrite = errors.New("compress: cannot seek on a compressed writer except to append")
)

// Model is the upper half of the pipeline: it presents a byte-oriented
// view of the logical element and may reorder bytes before they reach
// the coder. The sole mandated variant, STDIO, is the identity.
type Model interface {
	Code() uint16
	Name() string
	// Encode reorders the full logical payload before encoding.
	Encode(plain []byte) []byte
	// Decode reverses Encode, recovering the logical byte order.
	Decode(modeled []byte) []byte
}

// Coder is the lower half of the pipeline: it turns a (possibly
// reordered) byte payload into the bytes actually stored in the
// backing element, and back.
type Coder interface {
	Code() uint16
	Name() string
	// EncodeAll transforms the full modeled payload into encoded bytes.
	EncodeAll(modeled []byte, params any) ([]byte, error)
	// DecodeAll recovers exactly logicalLen modeled bytes from encoded.
	DecodeAll(encoded []byte, logicalLen int64, params any) ([]byte, error)
	// EncodeParams serializes this coder's header trailer (§4.E.1).
	EncodeParams(params any) []byte
	// DecodeParams parses this coder's header trailer out of buf,
	// returning the number of bytes consumed.
	DecodeParams(buf []byte) (params any, consumed int, err error)
}

var (
	models = map[uint16]Model{}
	coders = map[uint16]Coder{}
)

// RegisterModel installs m into the model registry. Called from init()
// by each model implementation file.
func RegisterModel(m Model) { models[m.Code()] = m }

// RegisterCoder installs c into the coder registry. Called from init()
// by each coder implementation file, including the optional
// build-tag-gated xz/zstd coders.
func RegisterCoder(c Coder) { coders[c.Code()] = c }

// LookupModel returns the registered Model for code, or ErrUnknownModel.
func LookupModel(code uint16) (Model, error) {
	m, ok := models[code]
	if !ok {
		return nil, ErrUnknownModel
	}
	return m, nil
}

// LookupCoder returns the registered Coder for code, or ErrUnknownCoder.
func LookupCoder(code uint16) (Coder, error) {
	c, ok := coders[code]
	if !ok {
		return nil, ErrUnknownCoder
	}
	return c, nil
}
