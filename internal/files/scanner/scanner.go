package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/skaldic/xsdc/internal/checksum"
	"github.com/skaldic/xsdc/internal/files/filesystem"
	"github.com/skaldic/xsdc/internal/identity"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// SchemaFile is one discovered schema source file.
type SchemaFile struct {
	// CanonicalID is the canonical schema id: the slash-normalized path
	// relative to the scan root, "./"-prefixed.
	CanonicalID string

	// Name is the basename of the file. Diagnostic only; identity is
	// always CanonicalID.
	Name string

	Content   []byte
	SizeBytes int64

	// Checksum is the normalized content digest; ChecksumRaw digests the
	// exact bytes.
	Checksum    string
	ChecksumRaw string
}

// ScanResult holds the outcome of one directory scan.
type ScanResult struct {
	Files []SchemaFile
}

// ByID indexes the scanned files by canonical id.
func (r ScanResult) ByID() map[string]SchemaFile {
	out := make(map[string]SchemaFile, len(r.Files))
	for _, f := range r.Files {
		out[f.CanonicalID] = f
	}
	return out
}

// Scanner discovers schema files in a directory tree.
// Safe for concurrent use as long as the provided calculator and provider
// are also thread-safe.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.Provider
}

// NewScanner creates a file scanner backed by the OS filesystem.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: filesystem.NewOSFileSystem(),
	}
}

// NewScannerWithFS creates a file scanner with a custom filesystem
// provider, primarily for testing with in-memory filesystems.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.Provider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: fsProvider,
	}
}

// ScanDirectory recursively scans sourcePath and returns every schema file
// found, keyed by canonical path identity.
func (s *Scanner) ScanDirectory(sourcePath string) (ScanResult, error) {
	dir, err := s.fsProvider.Open(sourcePath)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to open directory: %w", err)
	}

	var files []SchemaFile

	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}

		if file.Info().IsDir() {
			return nil
		}
		if !isSchemaExtension(filepath.Ext(file.Info().Name())) {
			return nil
		}

		schemaFile, err := s.processFile(file)
		if err != nil {
			return fmt.Errorf("failed to process file %s: %w", file.RelativePath(), err)
		}

		files = append(files, schemaFile)
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	return ScanResult{Files: files}, nil
}

// processFile reads one schema file and builds its metadata.
func (s *Scanner) processFile(file filesystem.File) (SchemaFile, error) {
	info := file.Info()
	if info.Size() > xsdc.MaxSchemaFileSize {
		return SchemaFile{}, fmt.Errorf("schema file exceeds %d bytes", xsdc.MaxSchemaFileSize)
	}

	content, err := file.ReadContent()
	if err != nil {
		return SchemaFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	return SchemaFile{
		CanonicalID: identity.Canonicalize(file.RelativePath()),
		Name:        info.Name(),
		Content:     content,
		SizeBytes:   info.Size(),
		Checksum:    s.calculator.CalculateNormalized(content),
		ChecksumRaw: s.calculator.CalculateRaw(content),
	}, nil
}

func isSchemaExtension(ext string) bool {
	return strings.EqualFold(ext, xsdc.SchemaExtension)
}
