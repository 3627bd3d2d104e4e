package ddstore

import (
	"sort"

	"github.com/KarpelesLab/hdf4core/compress"
	"github.com/KarpelesLab/hdf4core/internal/enc"
)

// ElementInfo summarizes one live DD for enumeration purposes (used by
// the CLI inspector and the read-only filesystem bridge).
type ElementInfo struct {
	Tag     Tag
	Ref     Ref
	Length  int64
	Special bool
}

// List returns every live element in the container, sorted by tag then
// ref. For a SPECIAL_COMP element, Length is the on-disk descriptor
// size, not the logical (uncompressed) length — callers that need the
// logical length should StartRead and Inquire instead.
func (s *Store) List() []ElementInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ElementInfo, 0, len(s.index))
	for k, loc := range s.index {
		if k.tag.Base() == compressedTag {
			// internal backing storage for a SPECIAL_COMP element, not
			// part of the public (tag, ref) surface.
			continue
		}
		d := s.ddAt(loc)
		out = append(out, ElementInfo{Tag: k.tag.Base(), Ref: k.ref, Length: int64(d.Length), Special: k.tag.IsSpecial()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tag != out[j].Tag {
			return out[i].Tag < out[j].Tag
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}

// NewElement creates a regular (non-special) DD for (tag, ref) backed
// by length zero-filled bytes. tag must not carry the special bit;
// callers that need a compressed element use CreateCompressed instead.
func (s *Store) NewElement(tag Tag, ref Ref, length int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.writable() {
		return newErr("NewElement", Denied, nil)
	}
	if tag.IsSpecial() {
		return newErr("NewElement", Args, nil)
	}
	if _, err := s.lookup(tag, ref); err == nil {
		return newErr("NewElement", CannotModify, nil)
	}

	off, err := s.getDiskBlock(length)
	if err != nil {
		return err
	}
	if length > 0 {
		if err := s.writeAt(off, make([]byte, length)); err != nil {
			return err
		}
	}
	loc, err := s.allocateDD()
	if err != nil {
		return err
	}
	s.putDD(loc, dd{Tag: tag, Ref: ref, Offset: int32(off), Length: int32(length)})
	return s.updateDD(loc)
}

// peekSpecialCode reads the first word of a descriptor to determine
// which special-element variant it names (§4.D: the descriptor always
// begins with its SpecialCode).
func (s *Store) peekSpecialCode(d dd) (SpecialCode, error) {
	if d.Length < 2 {
		return 0, newErr("peekSpecialCode", BadFile, nil)
	}
	buf := make([]byte, 2)
	if err := s.readAt(int64(d.Offset), buf); err != nil {
		return 0, err
	}
	return SpecialCode(enc.GetU16(buf)), nil
}

// resolve finds the live DD for (tag, ref), trying the special-tagged
// form first so a caller never needs to know ahead of time whether an
// element was specialized.
func (s *Store) resolve(tag Tag, ref Ref) (ddLoc, SpecialCode, Variant, error) {
	if loc, err := s.lookup(MkSpecial(tag), ref); err == nil {
		d := s.ddAt(loc)
		code, err := s.peekSpecialCode(d)
		if err != nil {
			return ddLoc{}, 0, nil, err
		}
		v, err := s.variantForCode(code)
		if err != nil {
			return ddLoc{}, 0, nil, err
		}
		return loc, code, v, nil
	}
	loc, err := s.lookup(tag, ref)
	if err != nil {
		return ddLoc{}, 0, nil, err
	}
	return loc, 0, regularVariant{}, nil
}

// StartRead opens a read access record on (tag, ref), dispatching to
// the regular or special variant as appropriate (§4.D).
func (s *Store) StartRead(tag Tag, ref Ref) (AID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, code, variant, err := s.resolve(tag, ref)
	if err != nil {
		return invalidAID, err
	}
	ar := &AccessRecord{store: s, loc: loc, tag: tag, ref: ref, mode: AccessRead, special: code, variant: variant}
	if err := variant.StartRead(ar); err != nil {
		return invalidAID, s.checkStrict(err)
	}
	aid, err := s.ar.acquire(ar)
	if err != nil {
		return invalidAID, err
	}
	s.attach++
	return aid, nil
}

// StartWrite opens a write access record on (tag, ref). The file must
// have been opened writable.
func (s *Store) StartWrite(tag Tag, ref Ref) (AID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.writable() {
		return invalidAID, newErr("StartWrite", Denied, nil)
	}
	loc, code, variant, err := s.resolve(tag, ref)
	if err != nil {
		return invalidAID, err
	}
	ar := &AccessRecord{store: s, loc: loc, tag: tag, ref: ref, mode: AccessWrite, special: code, variant: variant}
	if err := variant.StartWrite(ar); err != nil {
		return invalidAID, s.checkStrict(err)
	}
	aid, err := s.ar.acquire(ar)
	if err != nil {
		return invalidAID, err
	}
	s.attach++
	return aid, nil
}

// Seek repositions aid's cursor per origin (§4.D.2).
func (s *Store) Seek(aid AID, offset int64, origin Origin) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return 0, err
	}
	pos, err := ar.variant.Seek(ar, offset, origin)
	return pos, s.checkStrict(err)
}

// Read returns n bytes from aid's current position, or every
// remaining byte through the end of the element when n == 0.
func (s *Store) Read(aid AID, n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return nil, err
	}
	if ar.mode != AccessRead {
		return nil, newErr("Read", Denied, nil)
	}
	out, err := ar.variant.Read(ar, n)
	return out, s.checkStrict(err)
}

// Write appends/overwrites p at aid's current position.
func (s *Store) Write(aid AID, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return 0, err
	}
	if ar.mode != AccessWrite {
		return 0, newErr("Write", Denied, nil)
	}
	n, err := ar.variant.Write(ar, p)
	return n, s.checkStrict(err)
}

// Inquire returns aid's current metadata snapshot.
func (s *Store) Inquire(aid AID) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return Metadata{}, err
	}
	return ar.variant.Inquire(ar), nil
}

// Info returns variant-specific introspection data for aid.
func (s *Store) Info(aid AID) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return Info{}, err
	}
	var out Info
	if err := ar.variant.Info(ar, &out); err != nil {
		return Info{}, s.checkStrict(err)
	}
	return out, nil
}

// EndAccess releases aid, flushing any pending writes first.
func (s *Store) EndAccess(aid AID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, err := s.ar.lookup(aid)
	if err != nil {
		return err
	}
	if err := ar.variant.EndAccess(ar); err != nil {
		return s.checkStrict(err)
	}
	if err := s.ar.release(aid); err != nil {
		return err
	}
	s.attach--
	return nil
}

// Delete removes (tag, ref), freeing its DD slot and, for a
// SPECIAL_COMP element, its backing storage's DD slot too (§4.B known
// limitation: underlying disk regions are not reclaimed).
func (s *Store) Delete(tag Tag, ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.writable() {
		return newErr("Delete", Denied, nil)
	}

	if loc, err := s.lookup(MkSpecial(tag), ref); err == nil {
		d := s.ddAt(loc)
		if code, cerr := s.peekSpecialCode(d); cerr == nil && code == SpecialComp {
			buf := make([]byte, d.Length)
			if rerr := s.readAt(int64(d.Offset), buf); rerr == nil {
				if h, _, herr := compress.DecodeHeader(buf); herr == nil {
					s.deleteDD(compressedTag, Ref(h.CompRef))
				}
			}
		}
		return s.deleteDD(MkSpecial(tag), ref)
	}
	return s.deleteDD(tag, ref)
}
