package ddstore

import (
	"errors"

	"github.com/KarpelesLab/hdf4core/compress"
)

// ddBacking adapts one internal (compressedTag, ref) DD slot to
// compress.Backing, so the compression engine never has to know about
// DD blocks or the hash index (§4.E.1).
type ddBacking struct {
	store *Store
	tag   Tag
	ref   Ref
}

func (b *ddBacking) Len() int64 {
	loc, err := b.store.lookup(b.tag, b.ref)
	if err != nil {
		return 0
	}
	return int64(b.store.ddAt(loc).Length)
}

func (b *ddBacking) ReadAt(off int64, p []byte) error {
	loc, err := b.store.lookup(b.tag, b.ref)
	if err != nil {
		return err
	}
	d := b.store.ddAt(loc)
	if off < 0 || off+int64(len(p)) > int64(d.Length) {
		return newErr("ddBacking.ReadAt", Range, nil)
	}
	return b.store.readAt(int64(d.Offset)+off, p)
}

// Replace writes buf to a freshly allocated disk region and repoints
// the backing DD at it. The previously occupied region is abandoned,
// matching deleteDD's non-reclaiming behavior elsewhere in the store.
func (b *ddBacking) Replace(buf []byte) error {
	off, err := b.store.getDiskBlock(int64(len(buf)))
	if err != nil {
		return err
	}
	if len(buf) > 0 {
		if err := b.store.writeAt(off, buf); err != nil {
			return err
		}
	}
	nd := dd{Tag: b.tag, Ref: b.ref, Offset: int32(off), Length: int32(len(buf))}
	loc, err := b.store.lookup(b.tag, b.ref)
	if err != nil {
		loc, err = b.store.allocateDD()
		if err != nil {
			return err
		}
	}
	b.store.putDD(loc, nd)
	return b.store.updateDD(loc)
}

// compVariant implements Variant for SPECIAL_COMP elements (§4.E): the
// DD's descriptor carries a compress.Header naming the model/coder
// pair and the internal ref of the backing (compressedTag) DD holding
// the encoded bytes; every read/write runs through a compress.Engine
// attached to that backing.
type compVariant struct{}

func (compVariant) loadHeader(ar *AccessRecord) (compress.Header, compress.Coder, error) {
	d := ar.store.ddAt(ar.loc)
	buf := make([]byte, d.Length)
	if d.Length > 0 {
		if err := ar.store.readAt(int64(d.Offset), buf); err != nil {
			return compress.Header{}, nil, err
		}
	}
	h, coder, err := compress.DecodeHeader(buf)
	if err != nil {
		return compress.Header{}, nil, newErr("compVariant", BadCoder, err)
	}
	return h, coder, nil
}

func (c compVariant) attach(ar *AccessRecord) error {
	h, _, err := c.loadHeader(ar)
	if err != nil {
		return err
	}
	backing := &ddBacking{store: ar.store, tag: compressedTag, ref: Ref(h.CompRef)}
	eng, err := compress.Attach(h.ModelCode, h.CoderCode, h.Params, h.Length, backing)
	if err != nil {
		return mapEngineErr("attach", err)
	}
	ar.info = eng
	return nil
}

func (c compVariant) StartRead(ar *AccessRecord) error { return c.attach(ar) }

func (c compVariant) StartWrite(ar *AccessRecord) error {
	if err := c.attach(ar); err != nil {
		return err
	}
	pos, err := ar.info.(*compress.Engine).Seek(0, int(SeekEnd), true)
	if err != nil {
		return mapEngineErr("StartWrite", err)
	}
	ar.posn = pos
	return nil
}

func (compVariant) Seek(ar *AccessRecord, offset int64, origin Origin) (int64, error) {
	eng := ar.info.(*compress.Engine)
	pos, err := eng.Seek(offset, int(origin), ar.mode == AccessWrite)
	if err != nil {
		return 0, mapEngineErr("Seek", err)
	}
	ar.posn = pos
	return pos, nil
}

func (compVariant) Read(ar *AccessRecord, n int) ([]byte, error) {
	eng := ar.info.(*compress.Engine)
	out, err := eng.Read(n)
	if err != nil {
		return nil, mapEngineErr("Read", err)
	}
	ar.posn += int64(len(out))
	return out, nil
}

func (compVariant) Write(ar *AccessRecord, p []byte) (int, error) {
	eng := ar.info.(*compress.Engine)
	n, err := eng.Write(p)
	if err != nil {
		return 0, mapEngineErr("Write", err)
	}
	ar.posn += int64(n)
	return n, nil
}

func (compVariant) Inquire(ar *AccessRecord) Metadata {
	eng := ar.info.(*compress.Engine)
	return Metadata{
		Tag:     ar.tag,
		Ref:     ar.ref,
		Length:  eng.Length(),
		Posn:    ar.posn,
		Access:  ar.mode,
		Special: SpecialComp,
	}
}

func (c compVariant) EndAccess(ar *AccessRecord) error {
	eng := ar.info.(*compress.Engine)
	if ar.mode != AccessWrite {
		return nil
	}
	if err := eng.Flush(); err != nil {
		return newErr("EndAccess", IOError, err)
	}
	h, coder, err := c.loadHeader(ar)
	if err != nil {
		return err
	}
	h.Length = eng.Length()
	return writeDescriptor(ar, compress.EncodeHeader(h, coder))
}

func (c compVariant) Info(ar *AccessRecord, out *Info) error {
	h, coder, err := c.loadHeader(ar)
	if err != nil {
		return err
	}
	m, err := compress.LookupModel(h.ModelCode)
	if err != nil {
		return newErr("Info", BadModel, err)
	}
	backing := &ddBacking{store: ar.store, tag: compressedTag, ref: Ref(h.CompRef)}
	*out = Info{
		Special:    SpecialComp,
		Model:      m.Name(),
		Coder:      coder.Name(),
		CompRef:    Ref(h.CompRef),
		BackingLen: backing.Len(),
	}
	return nil
}

func mapEngineErr(op string, err error) *Error {
	switch {
	case errors.Is(err, compress.ErrCannotRandomWrite):
		return newErr(op, CannotRandomWrite, err)
	case errors.Is(err, compress.ErrRange):
		return newErr(op, Range, err)
	case errors.Is(err, compress.ErrUnknownModel):
		return newErr(op, BadModel, err)
	case errors.Is(err, compress.ErrUnknownCoder):
		return newErr(op, BadCoder, err)
	default:
		return newErr(op, Internal, err)
	}
}

// writeDescriptor serializes buf to a fresh disk region and repoints
// ar's DD at it; used both by CreateCompressed and by EndAccess after
// a write session changes the logical length.
func writeDescriptor(ar *AccessRecord, buf []byte) error {
	off, err := ar.store.getDiskBlock(int64(len(buf)))
	if err != nil {
		return err
	}
	if err := ar.store.writeAt(off, buf); err != nil {
		return err
	}
	d := dd{Tag: MkSpecial(ar.tag), Ref: ar.ref, Offset: int32(off), Length: int32(len(buf))}
	ar.store.putDD(ar.loc, d)
	return ar.store.updateDD(ar.loc)
}

// CreateCompressed specializes (tag, ref) into a SPECIAL_COMP element
// using the named model/coder pair (§4.E.4). If a regular element
// already occupies (tag, ref), its payload is migrated into the new
// compressed backing and the old DD is freed; re-specializing an
// already-special (tag, ref) fails with CannotModify. The returned AID
// is a write session positioned at the end of any migrated data, ready
// to accept further appended writes.
//
// Nothing about the existing (tag, ref) element is mutated until the
// new compressed element has been fully built and its descriptor
// durably written: the old regular DD is only freed as the last step,
// after every fallible operation (engine creation, migration, flush,
// header encode, descriptor write) has already succeeded, so a failure
// before that point leaves the existing element intact. Such a failure
// does not undo the earlier steps: the comp_ref taken from newRef stays
// consumed, and if the flush already wrote migrated bytes, their
// backing (compressedTag, comp_ref) DD stays in the index.
func (s *Store) CreateCompressed(tag Tag, ref Ref, modelCode, coderCode uint16, params any) (AID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.writable() {
		return invalidAID, newErr("CreateCompressed", Denied, nil)
	}
	if tag.IsSpecial() {
		return invalidAID, newErr("CreateCompressed", Args, nil)
	}
	if _, err := s.lookup(MkSpecial(tag), ref); err == nil {
		return invalidAID, newErr("CreateCompressed", CannotModify, nil)
	}

	var migrate []byte
	regLoc, regErr := s.lookup(tag, ref)
	if regErr == nil {
		d := s.ddAt(regLoc)
		migrate = make([]byte, d.Length)
		if d.Length > 0 {
			if err := s.readAt(int64(d.Offset), migrate); err != nil {
				return invalidAID, err
			}
		}
	}
	// regLoc's DD is left untouched until the new element is fully
	// committed below; migrate is just a copy of its bytes so far.

	compRef, err := s.newRef()
	if err != nil {
		return invalidAID, err
	}
	backing := &ddBacking{store: s, tag: compressedTag, ref: compRef}

	eng, err := compress.NewForCreate(modelCode, coderCode, params, backing)
	if err != nil {
		return invalidAID, s.checkStrict(mapEngineErr("CreateCompressed", err))
	}
	if len(migrate) > 0 {
		if _, err := eng.Write(migrate); err != nil {
			return invalidAID, s.checkStrict(mapEngineErr("CreateCompressed", err))
		}
	}
	if err := eng.Flush(); err != nil {
		return invalidAID, newErr("CreateCompressed", IOError, err)
	}

	coder, err := compress.LookupCoder(coderCode)
	if err != nil {
		return invalidAID, s.checkStrict(mapEngineErr("CreateCompressed", err))
	}
	h := compress.Header{
		Length:    eng.Length(),
		CompRef:   uint16(compRef),
		ModelCode: modelCode,
		CoderCode: coderCode,
		Params:    params,
	}
	descBuf := compress.EncodeHeader(h, coder)

	loc, err := s.allocateDD()
	if err != nil {
		return invalidAID, err
	}

	ar := &AccessRecord{
		store:      s,
		loc:        loc,
		tag:        tag,
		ref:        ref,
		mode:       AccessWrite,
		special:    SpecialComp,
		variant:    compVariant{},
		info:       eng,
		appendable: true,
	}

	// Every fallible step above succeeded; durably commit the new
	// descriptor, then — and only then — free the old regular slot.
	if err := writeDescriptor(ar, descBuf); err != nil {
		return invalidAID, err
	}
	ar.posn = eng.Length()

	if regErr == nil {
		s.putDD(regLoc, dd{})
		delete(s.index, ddKey{tag, ref})
		if err := s.updateDD(regLoc); err != nil {
			return invalidAID, err
		}
	}

	aid, err := s.ar.acquire(ar)
	if err != nil {
		return invalidAID, err
	}
	s.attach++
	return aid, nil
}
