package xsdc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for run-level failure scenarios. Callers distinguish them
// with errors.Is().
//
// Example usage:
//
//	report, err := driver.Run(ctx, cfg)
//	if errors.Is(err, xsdc.ErrNoSchemaFiles) {
//	    // nothing to do in this directory
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoSchemaFiles indicates no schema files were found in the
	// configured directories.
	ErrNoSchemaFiles = errors.New("no schema files found")

	// ErrRootFailed indicates at least one configured root schema ended in
	// the failed partition of the run report.
	ErrRootFailed = errors.New("root schema failed")
)

// ParseError reports structurally malformed schema source. It is fatal for
// the file it names and for nothing else.
type ParseError struct {
	SchemaID string
	Line     int
	Msg      string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s (line %d): %s", e.SchemaID, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", e.SchemaID, e.Msg)
}

// ResolutionError reports a linking failure: a dependency cycle detected by
// canonical-id revisit, or a schema missing from the available set.
// Resolution errors are recorded against the schema, never fatal to a batch.
type ResolutionError struct {
	// Kind is "cycle" or "missing schema".
	Kind string

	// SchemaID is the canonical id at which resolution failed.
	SchemaID string

	// Path is the resolution path from the root to the failure, for
	// diagnostics.
	Path []string

	Msg string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolution error (%s) at %s", e.Kind, e.SchemaID)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if len(e.Path) > 0 {
		msg += fmt.Sprintf(" (path %v)", e.Path)
	}
	return msg
}

// CodecError reports a decode or encode failure: an unknown root element, or
// a malformed input document. Fatal to the one codec call only.
type CodecError struct {
	Op   string // "decode" or "encode"
	Root string
	Msg  string
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.Root, e.Msg)
}

// CodegenError reports that the expand-and-embed pass could not compute an
// expansion for a generated module. The module keeps its unexpanded form;
// the run continues.
type CodegenError struct {
	SchemaID string
	Msg      string
}

// Error implements the error interface.
func (e *CodegenError) Error() string {
	return fmt.Sprintf("codegen error for %s: %s", e.SchemaID, e.Msg)
}

// ExitCodeForError returns the appropriate process exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrNoSchemaFiles):
		return ExitNoSchemaFiles
	case errors.Is(err, ErrRootFailed):
		return ExitRootFailed
	}

	// Flag and argument errors come from the CLI layer as plain strings.
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
