package compress

import "errors"

// ErrRange is returned by Engine.Seek/Read when the requested position
// falls outside the logical element.
var ErrRange = errors.New("compress: position outside element")

// Engine composes a Model over a Coder against one compressed
// element's backing storage (§4.E). It keeps the full logical payload
// buffered in memory for the lifetime of the access record — random
// seeks on read are then free, and writes are validated append-only —
// and defers the actual (re-)encode to Flush, mirroring §5's promise
// that a write is only guaranteed visible "until endaccess or an
// explicit flush".
type Engine struct {
	ModelCode uint16
	CoderCode uint16
	Params    any

	model   Model
	coder   Coder
	backing Backing

	plain []byte
	posn  int64
	dirty bool
}

// NewForCreate starts a brand-new, empty compressed element for
// writing (§4.E.4 step 4-6).
func NewForCreate(modelCode, coderCode uint16, params any, backing Backing) (*Engine, error) {
	m, err := LookupModel(modelCode)
	if err != nil {
		return nil, err
	}
	c, err := LookupCoder(coderCode)
	if err != nil {
		return nil, err
	}
	return &Engine{ModelCode: modelCode, CoderCode: coderCode, Params: params, model: m, coder: c, backing: backing, plain: []byte{}}, nil
}

// Attach reconstructs an Engine for an existing compressed element of
// the given logical length (§4.E.4 "Attach").
func Attach(modelCode, coderCode uint16, params any, logicalLen int64, backing Backing) (*Engine, error) {
	m, err := LookupModel(modelCode)
	if err != nil {
		return nil, err
	}
	c, err := LookupCoder(coderCode)
	if err != nil {
		return nil, err
	}
	e := &Engine{ModelCode: modelCode, CoderCode: coderCode, Params: params, model: m, coder: c, backing: backing}
	if logicalLen == 0 {
		e.plain = []byte{}
		return e, nil
	}
	encoded := make([]byte, backing.Len())
	if err := backing.ReadAt(0, encoded); err != nil {
		return nil, err
	}
	modeled, err := c.DecodeAll(encoded, logicalLen, params)
	if err != nil {
		return nil, err
	}
	e.plain = m.Decode(modeled)
	return e, nil
}

// Length is the current logical (uncompressed) size of the element.
func (e *Engine) Length() int64 { return int64(len(e.plain)) }

// Seek repositions the cursor. Write sessions may only seek to the
// current end of the element (append-only); other targets fail with
// ErrCannotRandomWrite (§4.E.2).
func (e *Engine) Seek(offset int64, origin int, writing bool) (int64, error) {
	var base int64
	switch origin {
	case 0:
		base = 0
	case 1:
		base = e.posn
	case 2:
		base = e.Length()
	default:
		return 0, ErrRange
	}
	pos := base + offset
	if pos < 0 {
		return 0, ErrRange
	}
	if writing {
		if pos != e.Length() {
			return 0, ErrCannotRandomWrite
		}
	} else if pos > e.Length() {
		return 0, ErrRange
	}
	e.posn = pos
	return pos, nil
}

// Read returns n bytes from the current position, or every remaining
// byte through the end of the element when n == 0.
func (e *Engine) Read(n int) ([]byte, error) {
	want := int64(n)
	if n == 0 {
		want = e.Length() - e.posn
	}
	if want < 0 || e.posn+want > e.Length() {
		return nil, ErrRange
	}
	out := make([]byte, want)
	copy(out, e.plain[e.posn:e.posn+want])
	e.posn += want
	return out, nil
}

// Write appends p at the current position, which must already equal
// the element's end (enforced by the caller via Seek).
func (e *Engine) Write(p []byte) (int, error) {
	e.plain = append(e.plain, p...)
	e.posn += int64(len(p))
	e.dirty = true
	return len(p), nil
}

// Flush re-encodes the full logical payload and writes it to the
// backing element, if anything changed since the last flush.
func (e *Engine) Flush() error {
	if !e.dirty {
		return nil
	}
	modeled := e.model.Encode(e.plain)
	encoded, err := e.coder.EncodeAll(modeled, e.Params)
	if err != nil {
		return err
	}
	if err := e.backing.Replace(encoded); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// BackingLen reports the encoded size after the most recent Flush.
func (e *Engine) BackingLen() int64 {
	if e.backing == nil {
		return 0
	}
	return e.backing.Len()
}
