package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// memBacking is a minimal in-memory Backing for engine tests.
type memBacking struct {
	buf []byte
}

func (b *memBacking) Len() int64 { return int64(len(b.buf)) }

func (b *memBacking) ReadAt(off int64, p []byte) error {
	copy(p, b.buf[off:off+int64(len(p))])
	return nil
}

func (b *memBacking) Replace(buf []byte) error {
	b.buf = append([]byte(nil), buf...)
	return nil
}

func TestEngineCreateWriteFlushAttach(t *testing.T) {
	backing := &memBacking{}
	eng, err := NewForCreate(ModelSTDIO, CoderRLE, nil, backing)
	require.NoError(t, err)

	payload := []byte("aaaaaaaaaaaaaaaaaaaabbbbccccccccccccccccccc")
	n, err := eng.Write(payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	require.NoError(t, eng.Flush())
	require.Greater(t, backing.Len(), int64(0))

	reattached, err := Attach(ModelSTDIO, CoderRLE, nil, eng.Length(), backing)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), reattached.Length())

	out, err := reattached.Read(0)
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestEngineRejectsRandomWrite(t *testing.T) {
	backing := &memBacking{}
	eng, err := NewForCreate(ModelSTDIO, CoderNone, nil, backing)
	require.NoError(t, err)

	_, err = eng.Write([]byte("hello"))
	require.NoError(t, err)

	_, err = eng.Seek(0, 0, true)
	require.ErrorIs(t, err, ErrCannotRandomWrite)
}

func TestEngineSeekPastEndFails(t *testing.T) {
	backing := &memBacking{}
	eng, err := NewForCreate(ModelSTDIO, CoderNone, nil, backing)
	require.NoError(t, err)
	require.NoError(t, eng.Flush())

	reattached, err := Attach(ModelSTDIO, CoderNone, nil, 0, backing)
	require.NoError(t, err)

	_, err = reattached.Seek(10, 0, false)
	require.ErrorIs(t, err, ErrRange)
}
