package ddstore

import "github.com/KarpelesLab/hdf4core/internal/enc"

// ddSlotSize is the on-disk size of one DD slot: tag(2) ref(2) offset(4) length(4).
const ddSlotSize = 12

// ddHeaderSize is the on-disk size of a DD block's header: next_offset(4) ndds(2).
const ddHeaderSize = 6

// defaultSlotsPerBlock is the number of DD slots a freshly allocated
// block carries, per §4.B.
const defaultSlotsPerBlock = 16

// dd is one Data Descriptor: (tag, ref, offset, length).
type dd struct {
	Tag    Tag
	Ref    Ref
	Offset int32
	Length int32
}

func (d dd) free() bool { return d.Tag == nullTag }

// ddBlock is one fixed-size on-disk DD block: a small header followed
// by a fixed number of DD slots.
type ddBlock struct {
	selfOffset int64 // where this block lives on disk
	next       int32 // offset of the next block, 0 terminates the chain
	slots      []dd
	dirty      bool
}

func (b *ddBlock) diskSize() int {
	return ddHeaderSize + len(b.slots)*ddSlotSize
}

func (b *ddBlock) marshal() []byte {
	buf := make([]byte, b.diskSize())
	enc.PutI32(buf[0:4], b.next)
	enc.PutU16(buf[4:6], uint16(len(b.slots)))
	off := ddHeaderSize
	for _, s := range b.slots {
		enc.PutU16(buf[off:off+2], uint16(s.Tag))
		enc.PutU16(buf[off+2:off+4], uint16(s.Ref))
		enc.PutI32(buf[off+4:off+8], s.Offset)
		enc.PutI32(buf[off+8:off+12], s.Length)
		off += ddSlotSize
	}
	return buf
}

func unmarshalDDBlock(selfOffset int64, buf []byte) (*ddBlock, error) {
	if len(buf) < ddHeaderSize {
		return nil, newErr("ddblock.unmarshal", IOError, nil)
	}
	b := &ddBlock{selfOffset: selfOffset}
	b.next = enc.GetI32(buf[0:4])
	ndds := enc.GetU16(buf[4:6])
	need := ddHeaderSize + int(ndds)*ddSlotSize
	if len(buf) < need {
		return nil, newErr("ddblock.unmarshal", IOError, nil)
	}
	b.slots = make([]dd, ndds)
	off := ddHeaderSize
	for i := range b.slots {
		b.slots[i] = dd{
			Tag:    Tag(enc.GetU16(buf[off : off+2])),
			Ref:    Ref(enc.GetU16(buf[off+2 : off+4])),
			Offset: enc.GetI32(buf[off+4 : off+8]),
			Length: enc.GetI32(buf[off+8 : off+12]),
		}
		off += ddSlotSize
	}
	return b, nil
}
