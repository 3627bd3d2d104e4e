package compress

import (
	"errors"

	"github.com/KarpelesLab/hdf4core/internal/enc"
)

// NBITParams describes the bit-packed projection of §4.E.3 NBIT: the
// number-type of the native values being written, whether the
// retained field is sign-extended or filled on read, and which
// bit_len-wide slice (counted from the value's least significant bit)
// is kept.
//
// decode(encode(x)) == x holds whenever every bit of x outside
// [StartBit, StartBit+BitLen) already matches what reconstruction
// fills in — zero below StartBit, and the sign (or FillOne) pattern
// above StartBit+BitLen. The straightforward case, StartBit == 0 with
// FillOne unset and x fitting entirely inside BitLen bits (as a signed
// BitLen-bit value when SignExtend is set), always satisfies this; larger
// StartBit values are supported but may be lossy, matching NBIT's role
// in the source as a (potentially lossy) bit-packing projection rather
// than a guaranteed-reversible general codec. See DESIGN.md.
type NBITParams struct {
	NumType    int32
	SignExtend bool
	FillOne    bool
	StartBit   int32
	BitLen     int32
}

// Number-type codes NBIT's nt_size resolution recognizes.
const (
	NumTypeInt8    int32 = 20
	NumTypeUint8   int32 = 21
	NumTypeInt16   int32 = 22
	NumTypeUint16  int32 = 23
	NumTypeInt32   int32 = 24
	NumTypeUint32  int32 = 25
	NumTypeFloat32 int32 = 5
	NumTypeFloat64 int32 = 6
)

func ntSize(nt int32) (int, error) {
	switch nt {
	case NumTypeInt8, NumTypeUint8:
		return 1, nil
	case NumTypeInt16, NumTypeUint16:
		return 2, nil
	case NumTypeInt32, NumTypeUint32, NumTypeFloat32:
		return 4, nil
	case NumTypeFloat64:
		return 8, nil
	}
	return 0, ErrBadNumType
}

func beLoad(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func beStore(v uint64, sz int) []byte {
	out := make([]byte, sz)
	for i := sz - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

type nbitCoder struct{}

func (nbitCoder) Code() uint16 { return CoderNBit }
func (nbitCoder) Name() string { return "NBIT" }

func (nbitCoder) validate(p NBITParams, ntSz int) error {
	if p.BitLen <= 0 || int(p.BitLen) > ntSz*8 {
		return errors.New("nbit: invalid bit_len")
	}
	if p.StartBit < 0 || int(p.StartBit)+int(p.BitLen) > ntSz*8 {
		return errors.New("nbit: start_bit/bit_len exceed the number-type width")
	}
	return nil
}

func (c nbitCoder) EncodeAll(modeled []byte, params any) ([]byte, error) {
	p, ok := params.(NBITParams)
	if !ok {
		return nil, errors.New("nbit: missing parameters")
	}
	ntSz, err := ntSize(p.NumType)
	if err != nil {
		return nil, err
	}
	if len(modeled)%ntSz != 0 {
		return nil, errors.New("nbit: input is not a multiple of the number-type size")
	}
	if err := c.validate(p, ntSz); err != nil {
		return nil, err
	}
	mask := (uint64(1) << uint(p.BitLen)) - 1
	bw := newBitWriter()
	for i := 0; i < len(modeled); i += ntSz {
		v := beLoad(modeled[i : i+ntSz])
		field := (v >> uint(p.StartBit)) & mask
		bw.writeBits(field, int(p.BitLen))
	}
	return bw.bytes(), nil
}

func (c nbitCoder) DecodeAll(encoded []byte, logicalLen int64, params any) ([]byte, error) {
	p, ok := params.(NBITParams)
	if !ok {
		return nil, errors.New("nbit: missing parameters")
	}
	ntSz, err := ntSize(p.NumType)
	if err != nil {
		return nil, err
	}
	if err := c.validate(p, ntSz); err != nil {
		return nil, err
	}
	if logicalLen%int64(ntSz) != 0 {
		return nil, errors.New("nbit: logical length is not a multiple of the number-type size")
	}
	count := int(logicalLen) / ntSz
	mask := (uint64(1) << uint(p.BitLen)) - 1
	br := newBitReader(encoded)
	out := make([]byte, 0, logicalLen)
	for i := 0; i < count; i++ {
		field, err := br.readBits(int(p.BitLen))
		if err != nil {
			return nil, err
		}
		var v uint64
		signBit := uint64(1) << uint(p.BitLen-1)
		switch {
		case p.SignExtend && field&signBit != 0:
			v = field | ^mask
		case !p.SignExtend && p.FillOne:
			v = field | ^mask
		default:
			v = field
		}
		v <<= uint(p.StartBit)
		out = append(out, beStore(v, ntSz)...)
	}
	return out, nil
}

func (nbitCoder) EncodeParams(params any) []byte {
	p, _ := params.(NBITParams)
	w := &enc.Writer{}
	w.PutI32(p.NumType)
	w.PutU16(boolToU16(p.SignExtend))
	w.PutU16(boolToU16(p.FillOne))
	w.PutI32(p.StartBit)
	w.PutI32(p.BitLen)
	return w.Buf
}

func (nbitCoder) DecodeParams(buf []byte) (any, int, error) {
	const trailerLen = 16
	if len(buf) < trailerLen {
		return nil, 0, ErrShortHeader
	}
	c := enc.NewCursor(buf)
	nt := c.I32()
	se := c.U16()
	fo := c.U16()
	sb := c.I32()
	bl := c.I32()
	return NBITParams{NumType: nt, SignExtend: se != 0, FillOne: fo != 0, StartBit: sb, BitLen: bl}, trailerLen, nil
}

func boolToU16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func init() { RegisterCoder(nbitCoder{}) }
