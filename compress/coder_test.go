package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, code uint16, params any, data []byte) {
	t.Helper()
	c, err := LookupCoder(code)
	require.NoError(t, err)

	encoded, err := c.EncodeAll(data, params)
	require.NoError(t, err)

	decoded, err := c.DecodeAll(encoded, int64(len(data)), params)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestNoneRoundTrip(t *testing.T) {
	roundTrip(t, CoderNone, nil, []byte("hello, world"))
	roundTrip(t, CoderNone, nil, nil)
}

func TestRLERoundTrip(t *testing.T) {
	roundTrip(t, CoderRLE, nil, []byte{1, 1, 1, 1, 1, 2, 3, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5})
	roundTrip(t, CoderRLE, nil, []byte("abcdefghijklmnop"))
	roundTrip(t, CoderRLE, nil, nil)

	// a run long enough to cross the 127-byte maximum run length.
	long := make([]byte, 300)
	for i := range long {
		long[i] = 0x42
	}
	roundTrip(t, CoderRLE, nil, long)
}

func TestSkpHuffRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly, many times over")
	roundTrip(t, CoderSkpHuff, SkpHuffParams{SkipSize: 1}, data)
	roundTrip(t, CoderSkpHuff, SkpHuffParams{SkipSize: 4}, data)
}

func TestSkpHuffSingleSymbol(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = 0x7f
	}
	roundTrip(t, CoderSkpHuff, SkpHuffParams{SkipSize: 1}, data)
}

func TestNBITRoundTripStartBitZero(t *testing.T) {
	// With StartBit == 0 and values fitting entirely within BitLen,
	// encode/decode is an exact round trip (see NBITParams doc comment).
	params := NBITParams{NumType: NumTypeInt32, BitLen: 8, StartBit: 0, SignExtend: true}
	vals := []int32{-1, 0, 1, 127, -128}
	data := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		data = append(data, beStore(uint64(uint32(v)), 4)...)
	}
	roundTrip(t, CoderNBit, params, data)
}

func TestNBITRoundTripUnsignedFill(t *testing.T) {
	params := NBITParams{NumType: NumTypeUint16, BitLen: 10, StartBit: 0, FillOne: false}
	vals := []uint16{0, 1, 511, 1023}
	data := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		data = append(data, beStore(uint64(v), 2)...)
	}
	roundTrip(t, CoderNBit, params, data)
}

func TestNBITRejectsOversizedBitLen(t *testing.T) {
	c, err := LookupCoder(CoderNBit)
	require.NoError(t, err)
	_, err = c.EncodeAll([]byte{0, 0}, NBITParams{NumType: NumTypeInt8, BitLen: 20})
	require.Error(t, err)
}

func TestHeaderRoundTrip(t *testing.T) {
	coder, err := LookupCoder(CoderRLE)
	require.NoError(t, err)

	h := Header{Length: 4096, CompRef: 7, ModelCode: ModelSTDIO, CoderCode: CoderRLE}
	buf := EncodeHeader(h, coder)

	got, gotCoder, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, CoderRLE, gotCoder.Code())
	require.Equal(t, h.Length, got.Length)
	require.Equal(t, h.CompRef, got.CompRef)
	require.Equal(t, h.ModelCode, got.ModelCode)
}
