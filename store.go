package ddstore

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/KarpelesLab/hdf4core/internal/xlog"
	"golang.org/x/sys/unix"
)

// magic is the 4-byte file signature every container begins with. It
// folds format family and version into one fixed constant, the same
// way the teacher's squashfs checks "hsqs"/"sqsh" up front.
var magic = [4]byte{0x0e, 0x03, 0x13, 0x01}

// Mode selects how Open accesses the underlying file.
type Mode int

const (
	// ModeRead opens an existing file read-only.
	ModeRead Mode = iota
	// ModeReadWrite opens an existing file for reading and writing.
	ModeReadWrite
	// ModeCreate creates a new file, truncating any existing one.
	ModeCreate
)

func (m Mode) writable() bool { return m != ModeRead }

type ddKey struct {
	tag Tag
	ref Ref
}

type ddLoc struct {
	block int
	slot  int
}

// Store is one open container: the "File Record" of the design. It
// owns the OS file handle, the DD-block chain, the hashed (tag,ref)
// index, and the access-record table that mediates every read/write
// against it.
type Store struct {
	mu sync.Mutex

	f    *os.File
	mode Mode
	log  xlog.Logger

	slotsPerBlock int
	maxAR         int
	strict        bool

	blocks  []*ddBlock
	index   map[ddKey]ddLoc
	maxRef  Ref
	attach  int
	fileEnd int64

	ar arTable
}

// Open opens or creates a container file at path per mode.
func Open(path string, mode Mode, opts ...Option) (*Store, error) {
	s := &Store{
		mode:          mode,
		log:           xlog.Discard,
		slotsPerBlock: defaultSlotsPerBlock,
		maxAR:         defaultMaxAccessRecords,
		index:         make(map[ddKey]ddLoc),
	}
	for _, o := range opts {
		o(s)
	}
	s.ar.init(s.maxAR)

	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeReadWrite:
		flag = os.O_RDWR
	case ModeCreate:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	default:
		return nil, newErr("Open", Args, nil)
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, newErr("Open", IOError, err)
	}
	s.f = f

	if mode.writable() {
		// advisory exclusive lock: one writer at a time per container,
		// same guarantee squashfs's loopback mount leaves to the OS but
		// that a DD-chain writer must enforce itself.
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			return nil, newErr("Open", Denied, err)
		}
	}

	if mode == ModeCreate {
		if err := s.initEmpty(); err != nil {
			f.Close()
			return nil, err
		}
		return s, nil
	}

	if err := s.loadExisting(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initEmpty() error {
	if _, err := s.f.WriteAt(magic[:], 0); err != nil {
		return newErr("Open", IOError, err)
	}
	first := &ddBlock{
		selfOffset: 4,
		next:       0,
		slots:      make([]dd, s.slotsPerBlock),
		dirty:      true,
	}
	if err := s.writeBlock(first); err != nil {
		return err
	}
	s.blocks = []*ddBlock{first}
	s.fileEnd = 4 + int64(first.diskSize())
	s.log.Infof("created new container at %s", pathOf(s.f))
	return nil
}

func (s *Store) loadExisting() error {
	hdr := make([]byte, 4)
	n, err := s.f.ReadAt(hdr, 0)
	if err != nil && err != io.EOF {
		return newErr("Open", IOError, err)
	}
	if n < 4 || !bytes.Equal(hdr, magic[:]) {
		return newErr("Open", BadFile, nil)
	}

	offset := int64(4)
	for {
		head := make([]byte, ddHeaderSize)
		if _, err := s.f.ReadAt(head, offset); err != nil {
			return newErr("Open", IOError, err)
		}
		ndds := int(head[4])<<8 | int(head[5])
		total := ddHeaderSize + ndds*ddSlotSize
		buf := make([]byte, total)
		if _, err := s.f.ReadAt(buf, offset); err != nil {
			return newErr("Open", IOError, err)
		}
		blk, err := unmarshalDDBlock(offset, buf)
		if err != nil {
			return newErr("Open", BadFile, err)
		}
		s.blocks = append(s.blocks, blk)
		bi := len(s.blocks) - 1
		for si, d := range blk.slots {
			if d.free() {
				continue
			}
			s.index[ddKey{d.Tag, d.Ref}] = ddLoc{bi, si}
			if d.Ref > s.maxRef {
				s.maxRef = d.Ref
			}
			end := int64(d.Offset) + int64(d.Length)
			if end > s.fileEnd {
				s.fileEnd = end
			}
		}
		end := offset + int64(blk.diskSize())
		if end > s.fileEnd {
			s.fileEnd = end
		}
		if blk.next == 0 {
			break
		}
		offset = int64(blk.next)
	}
	s.log.Infof("opened container with %d DD blocks", len(s.blocks))
	return nil
}

func pathOf(f *os.File) string {
	if f == nil {
		return "<nil>"
	}
	return f.Name()
}

// Close requires every access record on this store be released first.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attach != 0 {
		return newErr("Close", Denied, nil)
	}
	for _, b := range s.blocks {
		if !b.dirty {
			continue
		}
		if err := s.writeBlockLocked(b); err != nil {
			return err
		}
	}
	if err := s.f.Sync(); err != nil {
		return newErr("Close", IOError, err)
	}
	if s.mode.writable() {
		unix.Flock(int(s.f.Fd()), unix.LOCK_UN)
	}
	if err := s.f.Close(); err != nil {
		return newErr("Close", IOError, err)
	}
	return nil
}

func (s *Store) writeBlock(b *ddBlock) error {
	if _, err := s.f.WriteAt(b.marshal(), b.selfOffset); err != nil {
		return newErr("writeBlock", IOError, err)
	}
	b.dirty = false
	return nil
}

func (s *Store) writeBlockLocked(b *ddBlock) error { return s.writeBlock(b) }

// lookup returns the (block, slot) for (tag, ref); ref == WildcardRef
// matches the first live slot for tag.
func (s *Store) lookup(tag Tag, ref Ref) (ddLoc, error) {
	if ref == WildcardRef {
		for bi, b := range s.blocks {
			for si, d := range b.slots {
				if !d.free() && d.Tag == tag {
					return ddLoc{bi, si}, nil
				}
			}
		}
		return ddLoc{}, newErr("lookup", NotFound, nil)
	}
	loc, ok := s.index[ddKey{tag, ref}]
	if !ok {
		return ddLoc{}, newErr("lookup", NotFound, nil)
	}
	return loc, nil
}

// newRef returns maxRef+1, incrementing it.
func (s *Store) newRef() (Ref, error) {
	if s.maxRef == 0xFFFF {
		return 0, newErr("newRef", NoSpace, nil)
	}
	s.maxRef++
	return s.maxRef, nil
}

// allocateDD returns a free DD slot, extending the chain if needed.
func (s *Store) allocateDD() (ddLoc, error) {
	for bi, b := range s.blocks {
		for si, d := range b.slots {
			if d.free() {
				s.log.Debugf("allocateDD: reusing free slot block=%d slot=%d", bi, si)
				return ddLoc{bi, si}, nil
			}
		}
	}
	// extend the chain with a new block at end of file.
	nb := &ddBlock{
		next:  0,
		slots: make([]dd, s.slotsPerBlock),
		dirty: true,
	}
	nb.selfOffset = s.fileEnd
	if err := s.writeBlock(nb); err != nil {
		return ddLoc{}, err
	}
	s.fileEnd += int64(nb.diskSize())
	s.log.Debugf("allocateDD: extended chain with new block at offset=%d slots=%d", nb.selfOffset, s.slotsPerBlock)

	prev := s.blocks[len(s.blocks)-1]
	prev.next = int32(nb.selfOffset)
	prev.dirty = true
	if err := s.writeBlock(prev); err != nil {
		return ddLoc{}, err
	}

	s.blocks = append(s.blocks, nb)
	return ddLoc{len(s.blocks) - 1, 0}, nil
}

// getDiskBlock allocates length bytes at the end of the file and
// returns the offset; an atomic extension of the logical file length
// (the "growFile" operation of the design).
func (s *Store) getDiskBlock(length int64) (int64, error) {
	off := s.fileEnd
	s.fileEnd += length
	s.log.Debugf("growFile: extended file from offset=%d by %d bytes", off, length)
	return off, nil
}

// readAt/writeAt are positional I/O against the underlying file; they
// advance no logical cursor of their own.
func (s *Store) readAt(offset int64, buf []byte) error {
	n, err := s.f.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return newErr("readAt", IOError, err)
}

func (s *Store) writeAt(offset int64, buf []byte) error {
	n, err := s.f.WriteAt(buf, offset)
	if err != nil || n != len(buf) {
		return newErr("writeAt", IOError, err)
	}
	if end := offset + int64(n); end > s.fileEnd {
		s.fileEnd = end
	}
	return nil
}

// putDD writes dd into the given slot, updates the hash index, and
// marks the owning block dirty.
func (s *Store) putDD(loc ddLoc, d dd) {
	b := s.blocks[loc.block]
	b.slots[loc.slot] = d
	b.dirty = true
	if !d.free() {
		s.index[ddKey{d.Tag, d.Ref}] = loc
	}
}

func (s *Store) ddAt(loc ddLoc) dd { return s.blocks[loc.block].slots[loc.slot] }

// updateDD writes the owning block of loc back to disk.
func (s *Store) updateDD(loc ddLoc) error {
	return s.writeBlock(s.blocks[loc.block])
}

// deleteDD marks the slot for (tag, ref) free, removes it from the
// hash index, and marks the owning block dirty. The underlying
// payload storage is not reclaimed (§4.B known limitation).
func (s *Store) deleteDD(tag Tag, ref Ref) error {
	loc, err := s.lookup(tag, ref)
	if err != nil {
		return err
	}
	s.log.Debugf("deleteDD: freeing slot block=%d slot=%d tag=%d ref=%d", loc.block, loc.slot, tag, ref)
	delete(s.index, ddKey{tag, ref})
	s.putDD(loc, dd{})
	return s.updateDD(loc)
}
