package deriver

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/skaldic/xsdc/internal/identity"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// Options configures one derivation.
type Options struct {
	// ModulePath is the Go import base path under which generated modules
	// live, e.g. "example.com/gen/schemas".
	ModulePath string

	// FlattenAll forces copy-all-fields flattening of every inheritance
	// chain, producing concrete declarations with no cross-module embeds.
	// The batch driver enables this for the expand-and-embed pass.
	FlattenAll bool
}

// RootExport is one root element exported by a generated module.
type RootExport struct {
	Element  string
	TypeName string
}

// Module is one generated source module.
type Module struct {
	SchemaID string

	// Name is the module name derived from the canonical id, unique across
	// the closure even for same-basename schemas.
	Name string

	// Package is the Go package name of the module (same as Name).
	Package string

	// UUID is the deterministic schema identity embedded in the header.
	UUID string

	// Source is the gofmt-formatted Go source of the module.
	Source []byte

	// Imports lists the module names this module references.
	Imports []string

	// ChainDepth is the deepest cross-module inheritance chain observed;
	// the driver compares it against the expand ceiling.
	ChainDepth int

	// Roots lists the root elements this module declares.
	Roots []RootExport

	// Types lists exported type names, for the barrel module.
	Types []string
}

// view models handed to the emission template.

type importModel struct {
	Alias string
	Path  string
}

type fieldModel struct {
	Name   string
	GoType string
	Tag    string
}

type structModel struct {
	Name    string
	Comment string
	Embeds  []string
	Fields  []fieldModel
}

type enumValue struct {
	ConstName string
	Literal   string
}

type enumModel struct {
	Name   string
	Values []enumValue
}

type aliasModel struct {
	Name   string
	GoType string
}

type fileModel struct {
	Package  string
	SchemaID string
	UUID     string
	Imports  []importModel
	Structs  []structModel
	Enums    []enumModel
	Aliases  []aliasModel
	Roots    []RootExport
}

// Derive emits the Go module for the root schema of rs. Types merged from
// other schemas in the closure are referenced through their own modules,
// unless opts.FlattenAll embeds them as concrete fields.
func Derive(rs *xsdc.ResolvedSchema, opts Options) (*Module, error) {
	d := &deriver{rs: rs, opts: opts, imports: make(map[string]bool)}
	return d.run()
}

type deriver struct {
	rs      *xsdc.ResolvedSchema
	opts    Options
	imports map[string]bool
	depth   int
}

func (d *deriver) run() (*Module, error) {
	rs := d.rs
	moduleName := identity.ModuleName(rs.RootID)

	model := fileModel{
		Package:  moduleName,
		SchemaID: rs.RootID,
		UUID:     identity.SchemaID(rs.RootID).String(),
	}

	mod := &Module{
		SchemaID: rs.RootID,
		Name:     moduleName,
		Package:  moduleName,
		UUID:     model.UUID,
	}

	for _, key := range rs.KeyOrder {
		if key.SchemaID != rs.RootID {
			continue
		}
		if ct := rs.ComplexTypes[key]; ct != nil {
			model.Structs = append(model.Structs, d.buildStruct(key, ct))
			mod.Types = append(mod.Types, goName(ct.Name))
			continue
		}
		st := rs.SimpleTypes[key]
		if st == nil {
			continue
		}
		if len(st.Enumeration) > 0 {
			model.Enums = append(model.Enums, buildEnum(st))
		} else {
			model.Aliases = append(model.Aliases, aliasModel{
				Name:   goName(st.Name),
				GoType: d.simpleGoType(st),
			})
		}
		mod.Types = append(mod.Types, goName(st.Name))
	}

	for _, name := range rs.ElementOrder {
		ref := rs.Elements[name]
		if ref.SchemaID != rs.RootID {
			continue
		}
		model.Roots = append(model.Roots, RootExport{
			Element:  name,
			TypeName: goName(ref.Name),
		})
	}
	mod.Roots = model.Roots

	for imp := range d.imports {
		model.Imports = append(model.Imports, importModel{
			Alias: imp,
			Path:  strings.TrimSuffix(d.opts.ModulePath, "/") + "/" + imp,
		})
	}
	sortImports(model.Imports)
	for _, imp := range model.Imports {
		mod.Imports = append(mod.Imports, imp.Alias)
	}
	mod.ChainDepth = d.depth

	var buf bytes.Buffer
	if err := moduleTemplate.Execute(&buf, model); err != nil {
		return nil, &xsdc.CodegenError{SchemaID: rs.RootID, Msg: err.Error()}
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, &xsdc.CodegenError{SchemaID: rs.RootID, Msg: "emitted source does not format: " + err.Error()}
	}
	mod.Source = src
	return mod, nil
}

// buildStruct assembles the model for one complex type. Same-module
// inheritance flattens into copied fields; a base from another module
// becomes an embed and an import, unless FlattenAll is set.
func (d *deriver) buildStruct(key xsdc.TypeKey, ct *xsdc.ComplexTypeDef) structModel {
	s := structModel{
		Name:    goName(ct.Name),
		Comment: fmt.Sprintf("%s corresponds to the %s complex type.", goName(ct.Name), ct.Name),
	}

	fields, attrs, embed, hops := d.effectiveMembers(key)
	if hops > d.depth {
		d.depth = hops
	}
	if embed != nil {
		s.Embeds = append(s.Embeds, d.qualifiedName(*embed))
	}

	for _, a := range attrs {
		tag := fmt.Sprintf("`xml:\"%s,attr", a.Name)
		if a.Use != "required" {
			tag += ",omitempty"
		}
		tag += "\"`"
		s.Fields = append(s.Fields, fieldModel{
			Name:   goName(a.Name),
			GoType: d.refGoType(key.SchemaID, a.TypeRef, xsdc.CardinalityOptional),
			Tag:    tag,
		})
	}

	if ct.Content == xsdc.ContentSimple {
		s.Fields = append(s.Fields, fieldModel{
			Name:   "Text",
			GoType: d.refGoType(key.SchemaID, ct.SimpleContentBase, xsdc.CardinalityRequired),
			Tag:    "`xml:\",chardata\"`",
		})
		return s
	}
	if ct.Mixed {
		s.Fields = append(s.Fields, fieldModel{
			Name:   "Text",
			GoType: "string",
			Tag:    "`xml:\",chardata\"`",
		})
	}

	for _, f := range fields {
		card := f.Cardinality()
		tag := fmt.Sprintf("`xml:\"%s", f.Name)
		if card != xsdc.CardinalityRequired {
			tag += ",omitempty"
		}
		tag += "\"`"
		s.Fields = append(s.Fields, fieldModel{
			Name:   goName(f.Name),
			GoType: d.refGoType(key.SchemaID, f.TypeRef, card),
			Tag:    tag,
		})
	}

	return s
}

// effectiveMembers walks the extends chain of key and splits it into
// members to copy into the struct and an optional cross-module base to
// embed. hops counts cross-module boundaries in the full chain.
func (d *deriver) effectiveMembers(key xsdc.TypeKey) (fields []xsdc.Field, attrs []xsdc.Attribute, embed *xsdc.TypeKey, hops int) {
	rs := d.rs
	seenF := make(map[string]bool)
	seenA := make(map[string]bool)
	visited := make(map[xsdc.TypeKey]bool)
	hops = crossModuleHops(rs, key)

	cur := key
	for !visited[cur] {
		visited[cur] = true
		def := rs.ComplexTypes[cur]
		if def == nil {
			break
		}
		for _, f := range def.Fields {
			if f.Name == "" || seenF[f.Name] {
				continue
			}
			seenF[f.Name] = true
			fields = append(fields, f)
		}
		for _, a := range def.Attributes {
			if seenA[a.Name] || a.Prohibited() {
				continue
			}
			seenA[a.Name] = true
			attrs = append(attrs, a)
		}

		base, ok := rs.Extends[cur]
		if !ok {
			break
		}
		if base.SchemaID != cur.SchemaID && !d.opts.FlattenAll {
			embed = &base
			d.addImport(base.SchemaID)
			return fields, attrs, embed, hops
		}
		cur = base
	}
	return fields, attrs, nil, hops
}

// crossModuleHops counts the remaining module boundaries along an extends
// chain starting at key.
func crossModuleHops(rs *xsdc.ResolvedSchema, key xsdc.TypeKey) int {
	hops := 0
	visited := make(map[xsdc.TypeKey]bool)
	cur := key
	for !visited[cur] {
		visited[cur] = true
		base, ok := rs.Extends[cur]
		if !ok {
			break
		}
		if base.SchemaID != cur.SchemaID {
			hops++
		}
		cur = base
	}
	return hops
}

// refGoType maps a type reference to the Go type used in a field position.
func (d *deriver) refGoType(fromID, typeRef string, card xsdc.Cardinality) string {
	base := d.scalarGoType(fromID, typeRef)

	switch card {
	case xsdc.CardinalityArray:
		return "[]" + base
	case xsdc.CardinalityOptional:
		if strings.HasPrefix(base, "[]") {
			return base
		}
		if d.isStructRef(fromID, typeRef) {
			return "*" + base
		}
		return base
	default:
		return base
	}
}

func (d *deriver) isStructRef(fromID, typeRef string) bool {
	if typeRef == "" || xsdc.IsPrimitive(typeRef) {
		return false
	}
	key, ok := d.rs.LookupType(fromID, typeRef)
	return ok && d.rs.ComplexTypes[key] != nil
}

// scalarGoType resolves the unadorned Go type of a reference, adding an
// import when it lives in another module.
func (d *deriver) scalarGoType(fromID, typeRef string) string {
	if typeRef == "" {
		return "string"
	}
	if xsdc.IsPrimitive(typeRef) {
		return primitiveGoType(typeRef)
	}
	key, ok := d.rs.LookupType(fromID, typeRef)
	if !ok {
		return "string"
	}
	return d.qualifiedName(key)
}

// qualifiedName renders a type key as a Go type expression, qualified with
// its module package when it belongs to another schema.
func (d *deriver) qualifiedName(key xsdc.TypeKey) string {
	if key.SchemaID == d.rs.RootID {
		return goName(key.Name)
	}
	module := identity.ModuleName(key.SchemaID)
	d.addImport(key.SchemaID)
	return module + "." + goName(key.Name)
}

func (d *deriver) addImport(schemaID string) {
	if schemaID != d.rs.RootID {
		d.imports[identity.ModuleName(schemaID)] = true
	}
}

// simpleGoType maps a non-enum simple type to its Go representation.
func (d *deriver) simpleGoType(st *xsdc.SimpleTypeDef) string {
	if st.List {
		item := "string"
		if st.ItemType != "" && xsdc.IsPrimitive(st.ItemType) {
			item = primitiveGoType(st.ItemType)
		}
		return "[]" + item
	}
	if st.Base != "" && xsdc.IsPrimitive(st.Base) {
		return primitiveGoType(st.Base)
	}
	return "string"
}

func buildEnum(st *xsdc.SimpleTypeDef) enumModel {
	e := enumModel{Name: goName(st.Name)}
	for _, lit := range st.Enumeration {
		e.Values = append(e.Values, enumValue{
			ConstName: constName(e.Name, lit),
			Literal:   lit,
		})
	}
	return e
}

// primitiveGoType maps built-in schema types to Go types. Temporal and
// binary values stay string, matching the codec's default.
func primitiveGoType(name string) string {
	switch xsdc.KindOfPrimitive(name) {
	case xsdc.PrimitiveInteger:
		return "int64"
	case xsdc.PrimitiveDecimal:
		return "float64"
	case xsdc.PrimitiveBoolean:
		return "bool"
	default:
		return "string"
	}
}

func sortImports(imports []importModel) {
	for i := 1; i < len(imports); i++ {
		for j := i; j > 0 && imports[j].Alias < imports[j-1].Alias; j-- {
			imports[j], imports[j-1] = imports[j-1], imports[j]
		}
	}
}

var moduleTemplate = template.Must(template.New("module").Parse(`// Code generated by xsdc. DO NOT EDIT.
//
// Source schema: {{.SchemaID}}
// Schema identity: {{.UUID}}
package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)
{{end}}
{{- range .Enums}}
type {{.Name}} string

const (
{{- $enum := .}}
{{- range .Values}}
	{{.ConstName}} {{$enum.Name}} = "{{.Literal}}"
{{- end}}
)
{{end}}
{{- range .Aliases}}
type {{.Name}} = {{.GoType}}
{{end}}
{{- range .Structs}}
// {{.Comment}}
type {{.Name}} struct {
{{- range .Embeds}}
	{{.}}
{{- end}}
{{- range .Fields}}
	{{.Name}} {{.GoType}} {{.Tag}}
{{- end}}
}
{{end}}
{{- if .Roots}}
// Roots maps the root element names this module declares to their Go
// type names.
var Roots = map[string]string{
{{- range .Roots}}
	"{{.Element}}": "{{.TypeName}}",
{{- end}}
}
{{- end}}
`))
