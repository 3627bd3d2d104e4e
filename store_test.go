package ddstore_test

import (
	"path/filepath"
	"testing"

	"github.com/KarpelesLab/hdf4core"
	"github.com/KarpelesLab/hdf4core/compress"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "container.hdf")
}

func TestCreateAndReopen(t *testing.T) {
	path := tempPath(t)

	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	require.NoError(t, s.NewElement(100, 1, 0))

	aid, err := s.StartWrite(100, 1)
	require.NoError(t, err)
	n, err := s.Write(aid, []byte("hello container"))
	require.NoError(t, err)
	require.Equal(t, 15, n)
	require.NoError(t, s.EndAccess(aid))
	require.NoError(t, s.Close())

	s2, err := ddstore.Open(path, ddstore.ModeRead)
	require.NoError(t, err)
	defer s2.Close()

	aid2, err := s2.StartRead(100, 1)
	require.NoError(t, err)
	data, err := s2.Read(aid2, 0)
	require.NoError(t, err)
	require.Equal(t, "hello container", string(data))
	require.NoError(t, s2.EndAccess(aid2))
}

func TestEndAccessOnStaleAIDFailsArgs(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.NewElement(1, 1, 0))
	aid, err := s.StartRead(1, 1)
	require.NoError(t, err)
	require.NoError(t, s.EndAccess(aid))

	err = s.EndAccess(aid)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.Args, derr.Kind)
}

func TestSeekPastEndFailsRange(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.NewElement(1, 1, 4))
	aid, err := s.StartRead(1, 1)
	require.NoError(t, err)
	defer s.EndAccess(aid)

	_, err = s.Seek(aid, 100, ddstore.SeekStart)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.Range, derr.Kind)
}

func TestTooManyAccessRecords(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate, ddstore.WithMaxAccessRecords(1))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.NewElement(1, 1, 0))
	require.NoError(t, s.NewElement(1, 2, 0))

	aid, err := s.StartRead(1, 1)
	require.NoError(t, err)
	defer s.EndAccess(aid)

	_, err = s.StartRead(1, 2)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.TooMany, derr.Kind)
}

func TestCompressedElementRoundTrip(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	payload := []byte("aaaaaaaaaaaaaaaaaaaabbbbbbbbbbbccccccccccccccccccccccccccc")
	aid, err := s.CreateCompressed(200, 1, compress.ModelSTDIO, compress.CoderRLE, nil)
	require.NoError(t, err)
	n, err := s.Write(aid, payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.NoError(t, s.EndAccess(aid))

	rd, err := s.StartRead(200, 1)
	require.NoError(t, err)
	defer s.EndAccess(rd)

	md, err := s.Inquire(rd)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), md.Length)
	require.Equal(t, ddstore.SpecialComp, md.Special)

	data, err := s.Read(rd, 0)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	info, err := s.Info(rd)
	require.NoError(t, err)
	require.Equal(t, "STDIO", info.Model)
	require.Equal(t, "RLE", info.Coder)
}

func TestCompressedElementRandomWriteFails(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	aid, err := s.CreateCompressed(201, 1, compress.ModelSTDIO, compress.CoderNone, nil)
	require.NoError(t, err)
	defer s.EndAccess(aid)

	_, err = s.Write(aid, []byte("some data"))
	require.NoError(t, err)

	_, err = s.Seek(aid, 0, ddstore.SeekStart)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.CannotRandomWrite, derr.Kind)
}

func TestCreateCompressedTwiceFailsCannotModify(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	aid, err := s.CreateCompressed(202, 1, compress.ModelSTDIO, compress.CoderNone, nil)
	require.NoError(t, err)
	require.NoError(t, s.EndAccess(aid))

	_, err = s.CreateCompressed(202, 1, compress.ModelSTDIO, compress.CoderNone, nil)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.CannotModify, derr.Kind)
}

func TestDeleteRemovesElement(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.NewElement(1, 1, 0))
	require.NoError(t, s.Delete(1, 1))

	_, err = s.StartRead(1, 1)
	require.Error(t, err)
	var derr *ddstore.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ddstore.NotFound, derr.Kind)
}

func TestListEnumeratesElements(t *testing.T) {
	path := tempPath(t)
	s, err := ddstore.Open(path, ddstore.ModeCreate)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.NewElement(1, 1, 10))
	require.NoError(t, s.NewElement(1, 2, 20))
	aid, err := s.CreateCompressed(2, 1, compress.ModelSTDIO, compress.CoderNone, nil)
	require.NoError(t, err)
	require.NoError(t, s.EndAccess(aid))

	elems := s.List()
	require.Len(t, elems, 3)

	var sawSpecial bool
	for _, e := range elems {
		if e.Special {
			sawSpecial = true
			require.Equal(t, ddstore.Tag(2), e.Tag)
		}
	}
	require.True(t, sawSpecial)
}
