package ddstore

import "fmt"

// Tag is the 16-bit type code for a data object. The high bit marks a
// "special" element whose DD points at a descriptor rather than raw
// payload (see §4.B/§4.D of the design).
type Tag uint16

// specialBit is the high bit of a tag, set for special elements.
const specialBit Tag = 0x8000

// nullTag marks a free DD slot.
const nullTag Tag = 0

// MkSpecial returns the special-tagged form of t.
func MkSpecial(t Tag) Tag { return t | specialBit }

// IsSpecial reports whether t carries the special bit.
func (t Tag) IsSpecial() bool { return t&specialBit != 0 }

// Base strips the special bit, returning the plain variant tag.
func (t Tag) Base() Tag { return t &^ specialBit }

func (t Tag) String() string {
	if t.IsSpecial() {
		return fmt.Sprintf("SPECIAL|%d", uint16(t.Base()))
	}
	return fmt.Sprintf("%d", uint16(t))
}

// Ref is the 16-bit instance number, unique per tag within a file.
type Ref uint16

// WildcardRef matches the first live DD for a given tag in lookup.
const WildcardRef Ref = 0xFFFF

// SpecialCode identifies the variant of a special element's descriptor.
type SpecialCode uint16

const (
	// SpecialLinked marks a linked-block element (indirection chain of
	// fixed-size blocks). Recognized by the dispatch layer but not
	// implemented — see SPEC_FULL.md.
	SpecialLinked SpecialCode = 1
	// SpecialExt marks an external-file element. Recognized but not
	// implemented — see SPEC_FULL.md.
	SpecialExt SpecialCode = 2
	// SpecialComp marks a compressed element (§4.E).
	SpecialComp SpecialCode = 4
)

// compressedTag is the internal tag under which every compressed
// element's backing (raw, coded) bytes are stored, keyed by comp_ref.
// It is never visible through the public (tag, ref) surface.
const compressedTag Tag = 0x7FFE
