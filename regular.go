package ddstore

// regularVariant implements Variant for plain elements: the DD's
// offset/length point directly at the payload, so every operation is
// raw positional I/O against the store (§4.D.1).
type regularVariant struct{}

func (regularVariant) StartRead(ar *AccessRecord) error  { return nil }
func (regularVariant) StartWrite(ar *AccessRecord) error { return nil }

func (regularVariant) Seek(ar *AccessRecord, offset int64, origin Origin) (int64, error) {
	d := ar.store.ddAt(ar.loc)
	var base int64
	switch origin {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = ar.posn
	case SeekEnd:
		base = int64(d.Length)
	default:
		return 0, newErr("Seek", Args, nil)
	}
	pos := base + offset
	if pos < 0 {
		return 0, newErr("Seek", Range, nil)
	}
	if pos > int64(d.Length) {
		// regular elements are not appendable via seek; past-end seek
		// is only legal for variants that declare themselves appendable.
		return 0, newErr("Seek", Range, nil)
	}
	ar.posn = pos
	return pos, nil
}

func (regularVariant) Read(ar *AccessRecord, n int) ([]byte, error) {
	d := ar.store.ddAt(ar.loc)
	length := int64(d.Length)
	want := int64(n)
	if n == 0 {
		want = length - ar.posn
	}
	if want < 0 || ar.posn+want > length {
		return nil, newErr("Read", Range, nil)
	}
	buf := make([]byte, want)
	if want > 0 {
		if err := ar.store.readAt(int64(d.Offset)+ar.posn, buf); err != nil {
			return nil, err
		}
	}
	ar.posn += want
	return buf, nil
}

func (regularVariant) Write(ar *AccessRecord, p []byte) (int, error) {
	d := ar.store.ddAt(ar.loc)
	end := ar.posn + int64(len(p))
	if end > int64(d.Length) {
		d.Length = int32(end)
		ar.store.putDD(ar.loc, d)
		if err := ar.store.updateDD(ar.loc); err != nil {
			return 0, err
		}
	}
	if len(p) > 0 {
		if err := ar.store.writeAt(int64(d.Offset)+ar.posn, p); err != nil {
			return 0, err
		}
	}
	ar.posn += int64(len(p))
	return len(p), nil
}

func (regularVariant) Inquire(ar *AccessRecord) Metadata {
	d := ar.store.ddAt(ar.loc)
	return Metadata{
		Tag:    ar.tag,
		Ref:    ar.ref,
		Length: int64(d.Length),
		Offset: int64(d.Offset),
		Posn:   ar.posn,
		Access: ar.mode,
	}
}

func (regularVariant) EndAccess(ar *AccessRecord) error { return nil }

func (regularVariant) Info(ar *AccessRecord, out *Info) error {
	*out = Info{}
	return nil
}
