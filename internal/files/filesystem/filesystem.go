// Package filesystem abstracts file discovery behind a provider interface,
// enabling production use with the OS filesystem and tests with an
// in-memory one.
package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// File is an individual file with its metadata and content accessor.
type File interface {
	// Path returns the absolute path to the file.
	Path() string

	// RelativePath returns the path relative to the scan root.
	RelativePath() string

	// Info returns file metadata.
	Info() FileInfo

	// ReadContent returns the file's content.
	ReadContent() ([]byte, error)
}

// Directory is a directory tree that can be traversed to discover files.
type Directory interface {
	// Path returns the absolute path to the directory.
	Path() string

	// Walk traverses the tree, calling fn for each file and directory.
	// If fn returns an error, walking stops and Walk returns it.
	Walk(fn func(File, error) error) error
}

// Provider is a factory for Directory instances.
type Provider interface {
	// Open opens a directory at the specified path.
	Open(path string) (Directory, error)

	// ReadFile reads one file at the given path.
	ReadFile(path string) ([]byte, error)
}
