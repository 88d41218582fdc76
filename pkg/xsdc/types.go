package xsdc

// DependencyKind identifies how one schema references another.
type DependencyKind string

const (
	// DependencyImport is an <import> edge (different target namespace).
	DependencyImport DependencyKind = "import"

	// DependencyInclude is an <include> or <redefine> edge (same namespace).
	DependencyInclude DependencyKind = "include"
)

// Dependency is one import/include edge of a schema file.
//
// Location holds the raw schemaLocation string exactly as written in the
// source document. TargetID is the canonical id of the referenced schema
// after location resolution; it is never a bare basename.
type Dependency struct {
	Location  string
	TargetID  string
	Kind      DependencyKind
	Namespace string
}

// ElementDecl is a top-level element declaration: a root name bound to a
// type reference.
type ElementDecl struct {
	Name    string
	TypeRef string
}

// SchemaUnit is the parsed form of one schema file.
//
// Units are immutable once parsed: the parser builds one per distinct file,
// the batch driver caches them by CanonicalID for the duration of a run, and
// nothing mutates them afterwards.
//
// Identity invariant: two units describe the same schema if and only if
// their CanonicalID values are equal. The basename of the file must never be
// used as a fallback identity key; two files named identically in different
// directories are different schemas.
type SchemaUnit struct {
	// CanonicalID is the resolved path of the source file, slash-separated
	// and relative to the scan root (e.g. "./types/devc.xsd").
	CanonicalID string

	TargetNamespace    string
	ElementFormDefault string

	// Elements lists top-level element declarations in document order.
	Elements []ElementDecl

	// ComplexTypes, SimpleTypes and Groups are in document order. Keyed
	// lookup happens on the ResolvedSchema, not here.
	ComplexTypes []*ComplexTypeDef
	SimpleTypes  []*SimpleTypeDef
	Groups       []*GroupDef

	// Dependencies lists import/include edges in document order.
	Dependencies []Dependency
}

// ContentModel describes how a complex type arranges its child fields.
type ContentModel string

const (
	ContentSequence ContentModel = "sequence"
	ContentChoice   ContentModel = "choice"
	ContentAll      ContentModel = "all"

	// ContentSimple marks simple content: text plus attributes, no child
	// elements.
	ContentSimple ContentModel = "simple"
)

// ComplexTypeDef describes one complexType declaration.
type ComplexTypeDef struct {
	Name    string
	Content ContentModel

	// Fields are the element particles of the content model, in document
	// order. A particle may be a group reference placeholder (GroupRef set)
	// that the resolver inlines.
	Fields []Field

	Attributes []Attribute

	// SimpleContentBase is the base type of a simpleContent extension or
	// restriction; the element's text content carries this type.
	SimpleContentBase string

	// Extends and Restricts record complexContent inheritance by base type
	// name. The resolver keeps these as edges; field lookup walks the chain
	// lazily rather than inlining ancestor fields at link time.
	Extends   string
	Restricts string

	Mixed bool
}

// SimpleTypeDef describes one simpleType declaration: a base primitive plus
// the facets this tool acts on. Unknown facets are dropped by the parser.
type SimpleTypeDef struct {
	Name string
	Base string

	Enumeration []string
	Pattern     string

	// Length bounds; -1 means unset.
	MinLength int
	MaxLength int

	MinInclusive string
	MaxInclusive string

	// List is true for <list>; ItemType names the item type.
	List     bool
	ItemType string

	// Union holds memberTypes of a <union>, if any.
	Union []string
}

// GroupDef is a reusable named field group. Group references are inlined
// into the referencing type's field list during resolution.
type GroupDef struct {
	Name   string
	Fields []Field
}

// Unbounded is the MaxOccurs value representing maxOccurs="unbounded".
const Unbounded = -1

// Field is one element particle inside a content model.
type Field struct {
	Name    string
	TypeRef string

	// MinOccurs and MaxOccurs are the declared occurrence bounds.
	// MaxOccurs is Unbounded (-1) for maxOccurs="unbounded".
	MinOccurs int
	MaxOccurs int

	// GroupRef names a group to inline in place of this particle. When set,
	// Name and TypeRef are empty.
	GroupRef string

	// Default overrides the zero value when the document omits the field.
	Default string
}

// Cardinality is the derived occurrence class of a field.
type Cardinality int

const (
	// CardinalityRequired is a required scalar: minOccurs >= 1, maxOccurs == 1.
	CardinalityRequired Cardinality = iota

	// CardinalityOptional is an optional scalar: minOccurs == 0, maxOccurs == 1.
	CardinalityOptional

	// CardinalityArray is a repeated field: maxOccurs > 1 or unbounded.
	// There is no "optional array" class; a zero-length array means absent.
	CardinalityArray
)

// Cardinality derives the occurrence class of the field. An unbounded
// maxOccurs always yields an array regardless of minOccurs.
func (f Field) Cardinality() Cardinality {
	if f.MaxOccurs == Unbounded || f.MaxOccurs > 1 {
		return CardinalityArray
	}
	if f.MinOccurs == 0 {
		return CardinalityOptional
	}
	return CardinalityRequired
}

// Attribute describes one attribute declaration of a complex type.
type Attribute struct {
	Name    string
	TypeRef string

	// Use is "optional" (default), "required" or "prohibited". Prohibited
	// attributes never appear in generated shapes or decoded values.
	Use string

	Default string
	Fixed   string
}

// Prohibited reports whether the attribute is declared use="prohibited".
func (a Attribute) Prohibited() bool { return a.Use == "prohibited" }

// TypeKey is the canonical identity of a type inside a ResolvedSchema:
// the canonical id of the declaring schema plus the locally declared name.
// Two files declaring the same local name therefore never collide.
type TypeKey struct {
	SchemaID string
	Name     string
}

// String renders the key as "schemaID#name" for diagnostics.
func (k TypeKey) String() string { return k.SchemaID + "#" + k.Name }

// ResolutionProblem records a reference that could not be resolved. Problems
// are accumulated during linking rather than aborting it, so sibling types
// still resolve.
type ResolutionProblem struct {
	// Owner is the type whose reference failed.
	Owner TypeKey

	// Field names the referencing field, or "" for an extends/group edge.
	Field string

	// Ref is the unresolvable name.
	Ref string

	Reason string
}

// ResolvedSchema is the output of linking one root SchemaUnit against the
// closure of schemas it references: merged type tables keyed by TypeKey,
// root element declarations, and recorded inheritance edges.
//
// ResolvedSchema values are immutable once built and hold no pointers back
// into the SchemaUnits they were merged from.
type ResolvedSchema struct {
	// RootID is the canonical id of the root schema.
	RootID string

	// Sources lists the canonical ids merged into this schema, root first,
	// in merge order.
	Sources []string

	// Namespaces maps each merged source id to its target namespace, when
	// declared. The encoder uses this to emit prefix declarations.
	Namespaces map[string]string

	// Elements maps root element names to their type keys. ElementOrder
	// preserves declaration order across the merged sources.
	Elements     map[string]TypeKey
	ElementOrder []string

	ComplexTypes map[TypeKey]*ComplexTypeDef
	SimpleTypes  map[TypeKey]*SimpleTypeDef

	// Extends maps a derived type to its resolved base. Field lookup walks
	// this lazily; bases are never inlined at link time.
	Extends map[TypeKey]TypeKey

	// KeyOrder lists all type keys (complex and simple) in merge order, for
	// deterministic emission.
	KeyOrder []TypeKey

	// Index resolves a local name per declaring schema. Lookups prefer the
	// referencing schema's own declarations before falling back to the rest
	// of the merge set in order.
	Index map[string]map[string]TypeKey

	// Problems collects missing references found during linking.
	Problems []ResolutionProblem
}

// LookupType resolves a local type name as seen from the schema identified
// by fromID: the declaring schema's own table first, then the remaining
// merged sources in merge order.
func (rs *ResolvedSchema) LookupType(fromID, name string) (TypeKey, bool) {
	if tbl, ok := rs.Index[fromID]; ok {
		if key, ok := tbl[name]; ok {
			return key, true
		}
	}
	for _, src := range rs.Sources {
		if src == fromID {
			continue
		}
		if key, ok := rs.Index[src][name]; ok {
			return key, true
		}
	}
	return TypeKey{}, false
}

// ComplexType returns the complex type stored under key, or nil.
func (rs *ResolvedSchema) ComplexType(key TypeKey) *ComplexTypeDef {
	return rs.ComplexTypes[key]
}

// SimpleType returns the simple type stored under key, or nil.
func (rs *ResolvedSchema) SimpleType(key TypeKey) *SimpleTypeDef {
	return rs.SimpleTypes[key]
}

// FieldsOf returns the effective field list of a complex type: own fields
// first, then ancestor fields from the extends chain, de-duplicated by name
// with the derived declaration winning.
func (rs *ResolvedSchema) FieldsOf(key TypeKey) []Field {
	var out []Field
	seen := make(map[string]bool)
	visited := make(map[TypeKey]bool)
	for cur, ok := key, true; ok && !visited[cur]; cur, ok = rs.Extends[cur] {
		visited[cur] = true
		def := rs.ComplexTypes[cur]
		if def == nil {
			break
		}
		for _, f := range def.Fields {
			if f.Name == "" || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

// AttributesOf returns the effective attribute list of a complex type,
// walking the extends chain with the same derived-wins precedence as
// FieldsOf. Prohibited attributes are filtered out.
func (rs *ResolvedSchema) AttributesOf(key TypeKey) []Attribute {
	var out []Attribute
	seen := make(map[string]bool)
	visited := make(map[TypeKey]bool)
	for cur, ok := key, true; ok && !visited[cur]; cur, ok = rs.Extends[cur] {
		visited[cur] = true
		def := rs.ComplexTypes[cur]
		if def == nil {
			break
		}
		for _, a := range def.Attributes {
			if seen[a.Name] || a.Prohibited() {
				continue
			}
			seen[a.Name] = true
			out = append(out, a)
		}
	}
	return out
}
