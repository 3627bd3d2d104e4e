package ddstore

// Variant is the uniform operation set every element kind publishes:
// a closed type switch on SpecialCode stands in for the source's
// function-pointer table (spec.md §9, "Polymorphism over element
// variants"). Regular elements use the built-in null table; compressed
// elements delegate to the modeling layer.
type Variant interface {
	StartRead(ar *AccessRecord) error
	StartWrite(ar *AccessRecord) error
	Seek(ar *AccessRecord, offset int64, origin Origin) (int64, error)
	// Read returns exactly n bytes starting at the access record's
	// current position, or — when n == 0 — every byte through the end
	// of the element.
	Read(ar *AccessRecord, n int) ([]byte, error)
	Write(ar *AccessRecord, p []byte) (int, error)
	Inquire(ar *AccessRecord) Metadata
	EndAccess(ar *AccessRecord) error
	Info(ar *AccessRecord, out *Info) error
}

// variantForCode selects the Variant implementation for a descriptor's
// special code. Codes the core recognizes but does not implement
// (linked-block, external-file — see SPEC_FULL.md) fail BadFile rather
// than silently behaving like a regular element.
func (s *Store) variantForCode(code SpecialCode) (Variant, error) {
	switch code {
	case SpecialComp:
		return compVariant{}, nil
	case SpecialLinked, SpecialExt:
		return nil, newErr("variantForCode", BadFile, nil)
	default:
		return nil, newErr("variantForCode", BadFile, nil)
	}
}
