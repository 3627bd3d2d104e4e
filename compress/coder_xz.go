//go:build xz

package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

// xzCoder is an additive coder variant beyond §4.E.3's mandatory set,
// built on the same whole-buffer EncodeAll/DecodeAll contract. Included
// only when built with -tags xz.
type xzCoder struct{}

func (xzCoder) Code() uint16 { return CoderXZ }
func (xzCoder) Name() string { return "XZ" }

func (xzCoder) EncodeAll(modeled []byte, _ any) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(modeled); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (xzCoder) DecodeAll(encoded []byte, logicalLen int64, _ any) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	out := make([]byte, logicalLen)
	if _, err := io.ReadFull(r, out); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

func (xzCoder) EncodeParams(any) []byte                    { return nil }
func (xzCoder) DecodeParams(buf []byte) (any, int, error) { return nil, 0, nil }

func init() { RegisterCoder(xzCoder{}) }
