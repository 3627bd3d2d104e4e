package ddstore

import "github.com/KarpelesLab/hdf4core/internal/xlog"

// defaultMaxAccessRecords bounds the process-wide access-record table
// when no WithMaxAccessRecords option is given.
const defaultMaxAccessRecords = 1024

// Option configures a Store at Open time, mirroring the teacher's
// functional-options pattern (squashfs.Option / squashfs.WriterOption).
type Option func(*Store)

// WithLogger installs a custom leveled logger; the default discards
// every message.
func WithLogger(l xlog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithDDBlockSize sets the number of DD slots a freshly allocated
// block carries. The default is 16 per §4.B.
func WithDDBlockSize(slots int) Option {
	return func(s *Store) {
		if slots > 0 {
			s.slotsPerBlock = slots
		}
	}
}

// WithMaxAccessRecords bounds the access-record table's capacity.
func WithMaxAccessRecords(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAR = n
		}
	}
}

// WithStrictInvariants controls what happens when the store detects an
// Internal-kind failure — an invariant violation rather than ordinary
// caller error — at the public API boundary. Off (the default) returns
// it as an ordinary error, the production-safe choice. On, the store
// panics instead, which is what test builds should enable so an
// invariant violation fails loudly at its origin rather than surfacing
// later as a confusing downstream symptom.
func WithStrictInvariants(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}
