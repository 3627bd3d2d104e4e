package ddstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckStrictPanicsOnInternal(t *testing.T) {
	s := &Store{strict: true}
	require.Panics(t, func() {
		s.checkStrict(newErr("op", Internal, nil))
	})
}

func TestCheckStrictPassesThroughWhenNotStrict(t *testing.T) {
	s := &Store{strict: false}
	err := newErr("op", Internal, nil)
	require.NotPanics(t, func() {
		got := s.checkStrict(err)
		require.Equal(t, err, got)
	})
}

func TestCheckStrictPassesThroughNonInternalKinds(t *testing.T) {
	s := &Store{strict: true}
	err := newErr("op", NotFound, nil)
	require.NotPanics(t, func() {
		got := s.checkStrict(err)
		require.Equal(t, err, got)
	})
}
