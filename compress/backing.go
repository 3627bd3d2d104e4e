package compress

// Backing is the minimal view of the hidden, compressed-bytes DD that
// a Coder needs: the number of encoded bytes currently stored, a way
// to read a slice of them, and a way to replace the whole payload
// after a (re-)encode. This is the File Store's read_at/write_at from
// the caller's point of view, narrowed to one element.
type Backing interface {
	// Len returns the number of bytes currently stored.
	Len() int64
	// ReadAt reads len(p) bytes starting at relative offset off.
	ReadAt(off int64, p []byte) error
	// Replace overwrites the entire backing payload with buf,
	// reallocating storage if buf is larger than the current capacity.
	Replace(buf []byte) error
}
