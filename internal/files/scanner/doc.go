// Package scanner provides schema file discovery.
//
// The scanner recursively walks a directory tree collecting schema files
// (case-insensitive .xsd extension), assigns each its canonical id (the
// slash-normalized path relative to the scan root, never a bare basename)
// and computes content checksums used for emit-skip decisions.
//
// The scanner is filesystem-agnostic through filesystem.Provider, enabling
// production use with the OS filesystem and tests with in-memory ones.
package scanner
