//go:build zstd

package compress

import (
	"github.com/klauspost/compress/zstd"
)

// zstdCoder is an additive coder variant beyond §4.E.3's mandatory
// set. Included only when built with -tags zstd.
type zstdCoder struct{}

func (zstdCoder) Code() uint16 { return CoderZSTD }
func (zstdCoder) Name() string { return "ZSTD" }

func (zstdCoder) EncodeAll(modeled []byte, _ any) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(modeled, nil), nil
}

func (zstdCoder) DecodeAll(encoded []byte, logicalLen int64, _ any) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(encoded, make([]byte, 0, logicalLen))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (zstdCoder) EncodeParams(any) []byte                    { return nil }
func (zstdCoder) DecodeParams(buf []byte) (any, int, error) { return nil, 0, nil }

func init() { RegisterCoder(zstdCoder{}) }
