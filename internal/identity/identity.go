// Package identity derives canonical schema identity from file paths.
//
// Canonical ids are full resolved paths, slash-separated, "./"-rooted at
// the scan directory. They are the only identity key used for caching,
// dependency deduplication and cycle detection. Basenames are never an
// identity fallback: two files both named "devc.xsd" in different
// directories are distinct schemas.
package identity

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NamespaceSchemaIdentity is the fixed UUID namespace for generating
// deterministic schema identities from canonical ids. Derived from the
// string "skaldic.dev/xsdc/schema-identity/v1" using UUID v5 with the URL
// namespace, computed once at package load.
var NamespaceSchemaIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("skaldic.dev/xsdc/schema-identity/v1"))

// Canonicalize normalizes a raw file path into a canonical schema id:
// forward slashes, cleaned, prefixed with "./".
//
// Case is preserved. Lowercasing here would merge ids that the filesystem
// keeps distinct; only UUID generation is case-insensitive.
func Canonicalize(p string) string {
	normalized := strings.ReplaceAll(p, "\\", "/")
	normalized = path.Clean(normalized)
	if normalized == "." {
		return "./"
	}
	if !strings.HasPrefix(normalized, "./") && !strings.HasPrefix(normalized, "../") && !strings.HasPrefix(normalized, "/") {
		normalized = "./" + normalized
	}
	return normalized
}

// ModuleName derives the generated module name for a canonical id: the
// basename without extension, lowercased, with path separators of nested
// directories folded in to keep same-basename schemas apart.
//
// Examples:
//   - "./devc.xsd"          → "devc"
//   - "./types/devc.xsd"    → "types_devc"
//   - "./a/b/Item.XSD"      → "a_b_item"
func ModuleName(canonicalID string) string {
	trimmed := strings.TrimPrefix(canonicalID, "./")
	if i := strings.LastIndex(trimmed, "."); i > 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.ToLower(trimmed)
	trimmed = strings.ReplaceAll(trimmed, "/", "_")
	trimmed = strings.ReplaceAll(trimmed, "-", "_")
	return trimmed
}

// SchemaID creates a deterministic UUID v5 for a canonical schema id. Used
// to tag generated modules with a stable identity across runs and renames
// of the output tree.
//
// The input is lowercased first so case-insensitive filesystems do not
// produce two identities for one file.
func SchemaID(canonicalID string) uuid.UUID {
	normalized := strings.ToLower(strings.TrimPrefix(canonicalID, "./"))
	return uuid.NewSHA1(NamespaceSchemaIdentity, []byte(normalized))
}
