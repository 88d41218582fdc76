// Package deriver maps a ResolvedSchema to emitted Go type declarations,
// structurally equivalent to what the runtime codec decodes: arrays for
// unbounded fields, pointers for optional scalars, required fields plain.
//
// Each schema becomes one generated module. Types declared by other schemas
// in the closure are referenced through their own modules; inheritance is
// flattened copy-all-fields inside a module and becomes struct embedding
// plus an import when the base type lives in another module. The expand
// pass can force full flattening instead, embedding the complete field set
// as a concrete declaration.
package deriver
