package xsdc

import "path"

// LocationResolver maps a raw schemaLocation string, as written in an
// import/include directive of the schema identified by fromID, to the
// canonical id of the referenced schema.
//
// Canonical ids are full resolved paths. A resolver must never collapse to
// the basename: two files named identically in different directories are
// distinct schemas, and basename identity is exactly the defect class this
// tool regression-tests against.
type LocationResolver func(fromID, schemaLocation string) string

// DefaultLocationResolver resolves schemaLocation relative to the directory
// of the including schema, slash-normalized, preserving the "./" root
// prefix used by canonical ids.
func DefaultLocationResolver(fromID, schemaLocation string) string {
	joined := path.Join(path.Dir(fromID), schemaLocation)
	if len(joined) > 1 && joined[0] != '.' {
		joined = "./" + joined
	}
	return joined
}
