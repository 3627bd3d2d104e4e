package compress

import (
	"errors"
	"io"
)

// rleCoder implements the streaming byte-level run-length coder of
// §4.E.3: runs of >= 3 identical bytes emit 0x80|runlen + byte
// (runlen <= 127); literal runs emit literallen + bytes (literallen
// <= 127).
type rleCoder struct{}

func (rleCoder) Code() uint16 { return CoderRLE }
func (rleCoder) Name() string { return "RLE" }

const rleMaxRun = 127

func (rleCoder) EncodeAll(modeled []byte, _ any) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(modeled) {
		runLen := 1
		for i+runLen < len(modeled) && modeled[i+runLen] == modeled[i] && runLen < rleMaxRun {
			runLen++
		}
		if runLen >= 3 {
			out = append(out, 0x80|byte(runLen), modeled[i])
			i += runLen
			continue
		}

		litStart := i
		for i < len(modeled) && i-litStart < rleMaxRun {
			// stop the literal run as soon as a qualifying run begins
			look := 1
			for i+look < len(modeled) && modeled[i+look] == modeled[i] && look < rleMaxRun {
				look++
			}
			if look >= 3 {
				break
			}
			i++
		}
		litLen := i - litStart
		out = append(out, byte(litLen))
		out = append(out, modeled[litStart:i]...)
	}
	return out, nil
}

func (rleCoder) DecodeAll(encoded []byte, logicalLen int64, _ any) ([]byte, error) {
	var out []byte
	if logicalLen > 0 {
		out = make([]byte, 0, logicalLen)
	}
	i := 0
	for i < len(encoded) {
		ctrl := encoded[i]
		i++
		if ctrl&0x80 != 0 {
			runLen := int(ctrl & 0x7f)
			if i >= len(encoded) {
				return nil, io.ErrUnexpectedEOF
			}
			b := encoded[i]
			i++
			for k := 0; k < runLen; k++ {
				out = append(out, b)
			}
			continue
		}
		litLen := int(ctrl)
		if i+litLen > len(encoded) {
			return nil, io.ErrUnexpectedEOF
		}
		out = append(out, encoded[i:i+litLen]...)
		i += litLen
	}
	if int64(len(out)) != logicalLen {
		return nil, errors.New("rle: decoded length does not match logical length")
	}
	return out, nil
}

func (rleCoder) EncodeParams(any) []byte                    { return nil }
func (rleCoder) DecodeParams(buf []byte) (any, int, error) { return nil, 0, nil }

func init() { RegisterCoder(rleCoder{}) }
