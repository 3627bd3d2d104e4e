package compress

import "github.com/KarpelesLab/hdf4core/internal/enc"

// SpecialCompCode is the special code written as the descriptor's
// first word, identifying a SPECIAL_COMP element (§3, §4.E.1). Mirrors
// ddstore.SpecialComp; duplicated here as a plain constant so this
// package stays independent of ddstore (see DESIGN.md).
const SpecialCompCode uint16 = 4

// HeaderVersion is the descriptor header version this core writes.
// DecodeHeader reads the version field but does not check it.
const HeaderVersion uint16 = 0

// fixedHeaderLen is the size of §4.E.1's fixed fields, before the
// coder-specific trailer.
const fixedHeaderLen = 14

// Header is the on-disk descriptor for a SPECIAL_COMP element.
type Header struct {
	Length    int64
	CompRef   uint16
	ModelCode uint16
	CoderCode uint16
	Params    any
}

// EncodeHeader serializes h, including its coder's parameter trailer.
func EncodeHeader(h Header, coder Coder) []byte {
	w := &enc.Writer{}
	w.PutU16(SpecialCompCode)
	w.PutU16(HeaderVersion)
	w.PutI32(int32(h.Length))
	w.PutU16(h.CompRef)
	w.PutU16(h.ModelCode)
	w.PutU16(h.CoderCode)
	w.PutBytes(coder.EncodeParams(h.Params))
	return w.Buf
}

// DecodeHeader parses buf into a Header plus the Coder it names,
// failing with ErrShortHeader / ErrUnknownCoder as appropriate.
func DecodeHeader(buf []byte) (Header, Coder, error) {
	if len(buf) < fixedHeaderLen {
		return Header{}, nil, ErrShortHeader
	}
	c := enc.NewCursor(buf)
	code := c.U16()
	if code != SpecialCompCode {
		return Header{}, nil, ErrShortHeader
	}
	_ = c.U16() // header version; only 0 is defined
	length := c.I32()
	compRef := c.U16()
	modelCode := c.U16()
	coderCode := c.U16()

	coder, err := LookupCoder(coderCode)
	if err != nil {
		return Header{}, nil, err
	}
	params, _, err := coder.DecodeParams(c.Remaining())
	if err != nil {
		return Header{}, nil, err
	}
	return Header{
		Length:    int64(length),
		CompRef:   compRef,
		ModelCode: modelCode,
		CoderCode: coderCode,
		Params:    params,
	}, coder, nil
}
