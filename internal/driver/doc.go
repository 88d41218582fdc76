// Package driver orchestrates batch code generation: it scans directories
// for schema files, computes the dependency closure of the configured root
// schemas, runs parse → resolve → derive per schema in dependency order,
// stubs schemas that are referenced but unavailable, optionally re-emits
// modules whose inheritance chains are too deep (expand-and-embed), and
// writes a barrel module indexing everything generated.
//
// The driver is the only component with I/O and ordering responsibility.
// Failures are accumulated per schema, never aborting the whole batch; the
// final report partitions the closure into generated, failed and stubbed,
// disjoint and exhaustive.
package driver
