package resolver

import (
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// visitState tracks a schema's position in the depth-first walk.
type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// linker carries the per-resolution state. A linker is used for exactly one
// Resolve call; the visiting/merged state is path-sensitive and must not be
// shared.
type linker struct {
	units  map[string]*xsdc.SchemaUnit
	locate xsdc.LocationResolver
	states map[string]visitState
	out    *xsdc.ResolvedSchema
}

// Resolve links root against availableUnits, following dependency edges
// depth-first with cycle detection over canonical ids.
//
// A schema revisited after its subtree finished merging is skipped, so
// diamond-shaped dependency graphs link cleanly. A revisit while the schema
// is still on the current resolution path is a true cycle and returns a
// *xsdc.ResolutionError of kind "cycle". A dependency whose canonical id is
// absent from
// availableUnits returns kind "missing schema"; callers decide whether to
// stub it.
//
// Missing type references are not errors at this level: they are collected
// into the result's Problems list so sibling types still resolve.
func Resolve(root *xsdc.SchemaUnit, availableUnits map[string]*xsdc.SchemaUnit, locate xsdc.LocationResolver) (*xsdc.ResolvedSchema, error) {
	if locate == nil {
		locate = xsdc.DefaultLocationResolver
	}

	l := &linker{
		units:  availableUnits,
		locate: locate,
		states: make(map[string]visitState),
		out: &xsdc.ResolvedSchema{
			RootID:       root.CanonicalID,
			Namespaces:   make(map[string]string),
			Elements:     make(map[string]xsdc.TypeKey),
			ComplexTypes: make(map[xsdc.TypeKey]*xsdc.ComplexTypeDef),
			SimpleTypes:  make(map[xsdc.TypeKey]*xsdc.SimpleTypeDef),
			Extends:      make(map[xsdc.TypeKey]xsdc.TypeKey),
			Index:        make(map[string]map[string]xsdc.TypeKey),
		},
	}

	if err := l.visit(root, nil); err != nil {
		return nil, err
	}

	l.linkReferences()
	return l.out, nil
}

// visit merges one unit and recurses into its dependencies first-seen
// order. path is the canonical-id chain from the root, for diagnostics.
func (l *linker) visit(unit *xsdc.SchemaUnit, path []string) error {
	id := unit.CanonicalID
	l.states[id] = stateVisiting
	path = append(path, id)

	for _, dep := range unit.Dependencies {
		targetID := dep.TargetID
		if targetID == "" {
			targetID = l.locate(id, dep.Location)
		}

		switch l.states[targetID] {
		case stateDone:
			// Already linked into the merge set.
			continue
		case stateVisiting:
			// Revisit while still on the current path. With basename
			// identity this fired for any two same-named files; with full
			// path identity it only fires for true cycles.
			return &xsdc.ResolutionError{
				Kind:     "cycle",
				SchemaID: targetID,
				Path:     append([]string(nil), path...),
			}
		}

		target, ok := l.units[targetID]
		if !ok {
			return &xsdc.ResolutionError{
				Kind:     "missing schema",
				SchemaID: targetID,
				Path:     append([]string(nil), path...),
				Msg:      "referenced as " + dep.Location + " from " + id,
			}
		}

		if err := l.visit(target, path); err != nil {
			return err
		}
	}

	l.merge(unit)
	l.states[id] = stateDone
	return nil
}

// merge materializes one unit's declarations into the output tables.
// Entries are copies keyed by canonical key; the resolved schema holds no
// pointers back into the unit.
func (l *linker) merge(unit *xsdc.SchemaUnit) {
	id := unit.CanonicalID
	l.out.Sources = append(l.out.Sources, id)
	if unit.TargetNamespace != "" {
		l.out.Namespaces[id] = unit.TargetNamespace
	}

	index := make(map[string]xsdc.TypeKey)
	l.out.Index[id] = index

	groups := make(map[string]*xsdc.GroupDef, len(unit.Groups))
	for _, g := range unit.Groups {
		groups[g.Name] = g
	}

	for _, ct := range unit.ComplexTypes {
		key := xsdc.TypeKey{SchemaID: id, Name: ct.Name}
		copied := *ct
		copied.Fields = l.inlineGroups(key, ct.Fields, groups, nil)
		copied.Attributes = append([]xsdc.Attribute(nil), ct.Attributes...)
		l.out.ComplexTypes[key] = &copied
		l.out.KeyOrder = append(l.out.KeyOrder, key)
		index[ct.Name] = key
	}

	for _, st := range unit.SimpleTypes {
		key := xsdc.TypeKey{SchemaID: id, Name: st.Name}
		copied := *st
		copied.Enumeration = append([]string(nil), st.Enumeration...)
		copied.Union = append([]string(nil), st.Union...)
		l.out.SimpleTypes[key] = &copied
		l.out.KeyOrder = append(l.out.KeyOrder, key)
		index[st.Name] = key
	}

	for _, el := range unit.Elements {
		if _, exists := l.out.Elements[el.Name]; exists {
			continue
		}
		l.out.Elements[el.Name] = xsdc.TypeKey{SchemaID: id, Name: el.TypeRef}
		l.out.ElementOrder = append(l.out.ElementOrder, el.Name)
	}
}

// inlineGroups replaces group-reference particles with the referenced
// group's fields. Occurrence bounds of the reference win over the group
// member's own bounds when the reference is repeated or optional.
// Unresolvable or self-recursive references become Problems.
func (l *linker) inlineGroups(owner xsdc.TypeKey, fields []xsdc.Field, groups map[string]*xsdc.GroupDef, active map[string]bool) []xsdc.Field {
	var out []xsdc.Field
	for _, f := range fields {
		if f.GroupRef == "" {
			out = append(out, f)
			continue
		}

		g, ok := groups[f.GroupRef]
		if !ok || active[f.GroupRef] {
			reason := "group not found"
			if ok {
				reason = "recursive group reference"
			}
			l.out.Problems = append(l.out.Problems, xsdc.ResolutionProblem{
				Owner:  owner,
				Ref:    f.GroupRef,
				Reason: reason,
			})
			continue
		}

		if active == nil {
			active = make(map[string]bool)
		}
		active[f.GroupRef] = true
		inlined := l.inlineGroups(owner, g.Fields, groups, active)
		delete(active, f.GroupRef)

		for _, member := range inlined {
			if f.MaxOccurs == xsdc.Unbounded || f.MaxOccurs > 1 {
				member.MaxOccurs = f.MaxOccurs
			}
			if f.MinOccurs == 0 {
				member.MinOccurs = 0
			}
			out = append(out, member)
		}
	}
	return out
}

// linkReferences runs after the full closure is merged: it resolves every
// extends/restricts edge and checks every field and element type reference
// against the merged tables, recording misses as Problems.
func (l *linker) linkReferences() {
	rs := l.out

	for _, key := range rs.KeyOrder {
		ct, ok := rs.ComplexTypes[key]
		if !ok {
			continue
		}

		base := ct.Extends
		if base == "" {
			base = ct.Restricts
		}
		if base != "" {
			if baseKey, ok := rs.LookupType(key.SchemaID, base); ok {
				rs.Extends[key] = baseKey
			} else {
				rs.Problems = append(rs.Problems, xsdc.ResolutionProblem{
					Owner:  key,
					Ref:    base,
					Reason: "missing base type",
				})
			}
		}

		for _, f := range ct.Fields {
			if f.TypeRef == "" || xsdc.IsPrimitive(f.TypeRef) {
				continue
			}
			if _, ok := rs.LookupType(key.SchemaID, f.TypeRef); !ok {
				rs.Problems = append(rs.Problems, xsdc.ResolutionProblem{
					Owner:  key,
					Field:  f.Name,
					Ref:    f.TypeRef,
					Reason: "missing type",
				})
			}
		}
	}

	for _, name := range rs.ElementOrder {
		ref := rs.Elements[name]
		if ref.Name == "" || xsdc.IsPrimitive(ref.Name) {
			continue
		}
		if _, ok := rs.LookupType(ref.SchemaID, ref.Name); !ok {
			rs.Problems = append(rs.Problems, xsdc.ResolutionProblem{
				Owner:  ref,
				Field:  name,
				Ref:    ref.Name,
				Reason: "missing type",
			})
		}
	}
}
