package compress

import (
	"errors"

	"github.com/KarpelesLab/hdf4core/internal/enc"
)

// SkpHuffParams holds the SKPHUFF lane count (§9): the modeled byte
// stream is split round-robin across SkipSize interleaved lanes, each
// Huffman-coded independently. A SkipSize of 1 degenerates to a single
// whole-buffer Huffman stream.
type SkpHuffParams struct {
	SkipSize uint32
}

type skpHuffCoder struct{}

func (skpHuffCoder) Code() uint16 { return CoderSkpHuff }
func (skpHuffCoder) Name() string { return "SKPHUFF" }

func splitLanes(data []byte, numLanes int) [][]byte {
	lanes := make([][]byte, numLanes)
	for i, b := range data {
		lane := i % numLanes
		lanes[lane] = append(lanes[lane], b)
	}
	return lanes
}

func mergeLanes(lanes [][]byte, total int) []byte {
	out := make([]byte, total)
	idx := make([]int, len(lanes))
	for i := 0; i < total; i++ {
		lane := i % len(lanes)
		out[i] = lanes[lane][idx[lane]]
		idx[lane]++
	}
	return out
}

func encodeHuffLane(data []byte) []byte {
	lens := huffmanLengths(data)
	codes := canonicalCodes(lens)

	var table [256]byte
	for sym, l := range lens {
		table[sym] = byte(l)
	}

	bw := newBitWriter()
	for _, b := range data {
		bw.writeBits(codes[b], lens[b])
	}
	payload := bw.bytes()

	w := &enc.Writer{}
	w.PutBytes(table[:])
	w.PutU32(uint32(len(data)))
	w.PutU32(uint32(len(payload)))
	w.PutBytes(payload)
	return w.Buf
}

// canonicalDecodeTable maps (length, code) pairs back to their symbol,
// derived from the same length table and canonical assignment the
// encoder used.
func canonicalDecodeTable(lens map[byte]int) map[int]map[uint64]byte {
	codes := canonicalCodes(lens)
	out := map[int]map[uint64]byte{}
	for sym, l := range lens {
		if out[l] == nil {
			out[l] = map[uint64]byte{}
		}
		out[l][codes[sym]] = sym
	}
	return out
}

func decodeHuffLane(buf []byte) (data []byte, consumed int, err error) {
	if len(buf) < 256+8 {
		return nil, 0, ErrShortHeader
	}
	var table [256]byte
	copy(table[:], buf[:256])
	c := enc.NewCursor(buf[256:])
	count := c.U32()
	payloadLen := c.U32()
	hdrLen := 256 + 8
	if hdrLen+int(payloadLen) > len(buf) {
		return nil, 0, ErrShortHeader
	}
	payload := buf[hdrLen : hdrLen+int(payloadLen)]

	lens := map[byte]int{}
	for sym, l := range table {
		if l != 0 {
			lens[byte(sym)] = int(l)
		}
	}

	if count == 0 {
		return nil, hdrLen + int(payloadLen), nil
	}
	if len(lens) == 1 {
		var only byte
		for s := range lens {
			only = s
		}
		out := make([]byte, count)
		for i := range out {
			out[i] = only
		}
		return out, hdrLen + int(payloadLen), nil
	}

	decodeTable := canonicalDecodeTable(lens)
	br := newBitReader(payload)
	out := make([]byte, 0, count)
	for uint32(len(out)) < count {
		var cur uint64
		var curLen int
		for {
			bit, err := br.readBit()
			if err != nil {
				return nil, 0, errors.New("skphuff: truncated bit stream")
			}
			cur = cur<<1 | bit
			curLen++
			if sym, ok := decodeTable[curLen][cur]; ok {
				out = append(out, sym)
				break
			}
			if curLen > 32 {
				return nil, 0, errors.New("skphuff: invalid code")
			}
		}
	}
	return out, hdrLen + int(payloadLen), nil
}

func (skpHuffCoder) EncodeAll(modeled []byte, params any) ([]byte, error) {
	p, ok := params.(SkpHuffParams)
	if !ok || p.SkipSize == 0 {
		p = SkpHuffParams{SkipSize: 1}
	}
	lanes := splitLanes(modeled, int(p.SkipSize))
	var out []byte
	for _, lane := range lanes {
		out = append(out, encodeHuffLane(lane)...)
	}
	return out, nil
}

func (skpHuffCoder) DecodeAll(encoded []byte, logicalLen int64, params any) ([]byte, error) {
	p, ok := params.(SkpHuffParams)
	if !ok || p.SkipSize == 0 {
		p = SkpHuffParams{SkipSize: 1}
	}
	numLanes := int(p.SkipSize)
	lanes := make([][]byte, numLanes)
	off := 0
	for i := 0; i < numLanes; i++ {
		data, consumed, err := decodeHuffLane(encoded[off:])
		if err != nil {
			return nil, err
		}
		lanes[i] = data
		off += consumed
	}
	out := mergeLanes(lanes, int(logicalLen))
	return out, nil
}

func (skpHuffCoder) EncodeParams(params any) []byte {
	p, _ := params.(SkpHuffParams)
	if p.SkipSize == 0 {
		p.SkipSize = 1
	}
	w := &enc.Writer{}
	w.PutU32(p.SkipSize)
	w.PutU32(0) // reserved
	return w.Buf
}

func (skpHuffCoder) DecodeParams(buf []byte) (any, int, error) {
	const trailerLen = 8
	if len(buf) < trailerLen {
		return nil, 0, ErrShortHeader
	}
	c := enc.NewCursor(buf)
	skip := c.U32()
	_ = c.U32() // reserved, ignored
	return SkpHuffParams{SkipSize: skip}, trailerLen, nil
}

func init() { RegisterCoder(skpHuffCoder{}) }
