// Package resolver links a root SchemaUnit against the closure of schemas
// it references, producing a ResolvedSchema: one merged type table keyed by
// (declaring schema, local name), root element declarations, inheritance
// edges, and group references inlined.
//
// Cycle detection keys off canonical schema identity, the full resolved
// path. Keying off basenames instead is exactly the defect that once sent
// two files both named "devc.xsd" into infinite recursion; the resolver
// tests pin that scenario.
package resolver
