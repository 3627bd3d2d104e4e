package compress

import "errors"

// noneCoder is the pass-through coder: the backing element's bytes
// are exactly the modeled bytes (§4.E.3 NONE).
type noneCoder struct{}

func (noneCoder) Code() uint16 { return CoderNone }
func (noneCoder) Name() string { return "NONE" }

func (noneCoder) EncodeAll(modeled []byte, _ any) ([]byte, error) {
	return append([]byte(nil), modeled...), nil
}

func (noneCoder) DecodeAll(encoded []byte, logicalLen int64, _ any) ([]byte, error) {
	if int64(len(encoded)) != logicalLen {
		return nil, errors.New("none: encoded length does not match logical length")
	}
	return append([]byte(nil), encoded...), nil
}

func (noneCoder) EncodeParams(any) []byte                    { return nil }
func (noneCoder) DecodeParams(buf []byte) (any, int, error) { return nil, 0, nil }

func init() { RegisterCoder(noneCoder{}) }
