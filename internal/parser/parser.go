package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/skaldic/xsdc/pkg/xsdc"
)

// Wire structs for the schema subset. Decoded per top-level child with
// xml.Decoder.DecodeElement so that document order of declarations and
// dependency edges survives into the SchemaUnit.

type xsdDirective struct {
	SchemaLocation string `xml:"schemaLocation,attr"`
	Namespace      string `xml:"namespace,attr"`
}

type xsdElement struct {
	Name      string `xml:"name,attr"`
	Type      string `xml:"type,attr"`
	Ref       string `xml:"ref,attr"`
	Default   string `xml:"default,attr"`
	MinOccurs string `xml:"minOccurs,attr"`
	MaxOccurs string `xml:"maxOccurs,attr"`
}

type xsdGroup struct {
	Name      string           `xml:"name,attr"`
	Ref       string           `xml:"ref,attr"`
	MinOccurs string           `xml:"minOccurs,attr"`
	MaxOccurs string           `xml:"maxOccurs,attr"`
	Sequence  *xsdParticleList `xml:"sequence"`
	Choice    *xsdParticleList `xml:"choice"`
	All       *xsdParticleList `xml:"all"`
}

type xsdParticleList struct {
	Elements  []xsdElement      `xml:"element"`
	Groups    []xsdGroup        `xml:"group"`
	Sequences []xsdParticleList `xml:"sequence"`
	Choices   []xsdParticleList `xml:"choice"`
}

type xsdAttribute struct {
	Name    string `xml:"name,attr"`
	Type    string `xml:"type,attr"`
	Ref     string `xml:"ref,attr"`
	Use     string `xml:"use,attr"`
	Default string `xml:"default,attr"`
	Fixed   string `xml:"fixed,attr"`
}

type xsdDerivation struct {
	Base       string           `xml:"base,attr"`
	Sequence   *xsdParticleList `xml:"sequence"`
	Choice     *xsdParticleList `xml:"choice"`
	All        *xsdParticleList `xml:"all"`
	Groups     []xsdGroup       `xml:"group"`
	Attributes []xsdAttribute   `xml:"attribute"`
}

type xsdContent struct {
	Extension   *xsdDerivation `xml:"extension"`
	Restriction *xsdDerivation `xml:"restriction"`
}

type xsdComplexType struct {
	Name           string           `xml:"name,attr"`
	Mixed          string           `xml:"mixed,attr"`
	Sequence       *xsdParticleList `xml:"sequence"`
	Choice         *xsdParticleList `xml:"choice"`
	All            *xsdParticleList `xml:"all"`
	Groups         []xsdGroup       `xml:"group"`
	Attributes     []xsdAttribute   `xml:"attribute"`
	ComplexContent *xsdContent      `xml:"complexContent"`
	SimpleContent  *xsdContent      `xml:"simpleContent"`
}

type xsdFacet struct {
	Value string `xml:"value,attr"`
}

type xsdRestriction struct {
	Base         string     `xml:"base,attr"`
	Enumerations []xsdFacet `xml:"enumeration"`
	Pattern      *xsdFacet  `xml:"pattern"`
	MinLength    *xsdFacet  `xml:"minLength"`
	MaxLength    *xsdFacet  `xml:"maxLength"`
	MinInclusive *xsdFacet  `xml:"minInclusive"`
	MaxInclusive *xsdFacet  `xml:"maxInclusive"`
}

type xsdList struct {
	ItemType string `xml:"itemType,attr"`
}

type xsdUnion struct {
	MemberTypes string `xml:"memberTypes,attr"`
}

type xsdSimpleType struct {
	Name        string          `xml:"name,attr"`
	Restriction *xsdRestriction `xml:"restriction"`
	List        *xsdList        `xml:"list"`
	Union       *xsdUnion       `xml:"union"`
}

// Parse converts schema source text into a SchemaUnit identified by
// canonicalID. Pure function of its input; the returned unit is never
// mutated afterwards.
//
// Unsupported constructs are skipped. Parse fails with *xsdc.ParseError
// only on malformed XML or when the document root is not a schema element.
func Parse(data []byte, canonicalID string) (*xsdc.SchemaUnit, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := findSchemaRoot(dec, canonicalID)
	if err != nil {
		return nil, err
	}

	unit := &xsdc.SchemaUnit{CanonicalID: canonicalID}
	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "targetNamespace":
			unit.TargetNamespace = attr.Value
		case "elementFormDefault":
			unit.ElementFormDefault = attr.Value
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapXMLError(err, canonicalID)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if err := parseTopLevel(dec, &se, unit); err != nil {
			return nil, err
		}
	}

	return unit, nil
}

// findSchemaRoot advances the decoder to the document root and verifies it
// is a schema element, prefix-agnostic.
func findSchemaRoot(dec *xml.Decoder, canonicalID string) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, &xsdc.ParseError{SchemaID: canonicalID, Msg: "missing root element"}
		}
		if err != nil {
			return nil, wrapXMLError(err, canonicalID)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "schema" {
				return nil, &xsdc.ParseError{
					SchemaID: canonicalID,
					Msg:      "root element is <" + se.Name.Local + ">, expected <schema>",
				}
			}
			return &se, nil
		}
	}
}

// parseTopLevel dispatches one direct child of the schema root. Unmodeled
// child kinds are skipped wholesale.
func parseTopLevel(dec *xml.Decoder, se *xml.StartElement, unit *xsdc.SchemaUnit) error {
	switch se.Name.Local {
	case "import":
		var d xsdDirective
		if err := dec.DecodeElement(&d, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if d.SchemaLocation != "" {
			unit.Dependencies = append(unit.Dependencies, xsdc.Dependency{
				Location:  d.SchemaLocation,
				Kind:      xsdc.DependencyImport,
				Namespace: d.Namespace,
			})
		}
	case "include", "redefine":
		var d xsdDirective
		if err := dec.DecodeElement(&d, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if d.SchemaLocation != "" {
			unit.Dependencies = append(unit.Dependencies, xsdc.Dependency{
				Location: d.SchemaLocation,
				Kind:     xsdc.DependencyInclude,
			})
		}
	case "element":
		var e xsdElement
		if err := dec.DecodeElement(&e, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if e.Name != "" {
			unit.Elements = append(unit.Elements, xsdc.ElementDecl{
				Name:    e.Name,
				TypeRef: stripPrefix(e.Type),
			})
		}
	case "complexType":
		var ct xsdComplexType
		if err := dec.DecodeElement(&ct, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if ct.Name != "" {
			unit.ComplexTypes = append(unit.ComplexTypes, convertComplexType(&ct))
		}
	case "simpleType":
		var st xsdSimpleType
		if err := dec.DecodeElement(&st, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if st.Name != "" {
			unit.SimpleTypes = append(unit.SimpleTypes, convertSimpleType(&st))
		}
	case "group":
		var g xsdGroup
		if err := dec.DecodeElement(&g, se); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
		if g.Name != "" {
			unit.Groups = append(unit.Groups, &xsdc.GroupDef{
				Name:   g.Name,
				Fields: convertParticles(firstParticleList(g.Sequence, g.Choice, g.All)),
			})
		}
	default:
		// annotation, notation, attributeGroup, anything else: skip.
		if err := dec.Skip(); err != nil {
			return wrapXMLError(err, unit.CanonicalID)
		}
	}
	return nil
}

func convertComplexType(ct *xsdComplexType) *xsdc.ComplexTypeDef {
	def := &xsdc.ComplexTypeDef{
		Name:  ct.Name,
		Mixed: ct.Mixed == "true",
	}

	switch {
	case ct.SimpleContent != nil:
		def.Content = xsdc.ContentSimple
		deriv := ct.SimpleContent.Extension
		if deriv == nil {
			deriv = ct.SimpleContent.Restriction
		}
		if deriv != nil {
			def.SimpleContentBase = stripPrefix(deriv.Base)
			def.Attributes = convertAttributes(deriv.Attributes)
		}
	case ct.ComplexContent != nil:
		var deriv *xsdDerivation
		if ct.ComplexContent.Extension != nil {
			deriv = ct.ComplexContent.Extension
			def.Extends = stripPrefix(deriv.Base)
		} else if ct.ComplexContent.Restriction != nil {
			deriv = ct.ComplexContent.Restriction
			def.Restricts = stripPrefix(deriv.Base)
		}
		if deriv != nil {
			model, particles := pickContentModel(deriv.Sequence, deriv.Choice, deriv.All)
			def.Content = model
			def.Fields = convertParticles(particles)
			def.Fields = append(def.Fields, convertGroupRefs(deriv.Groups)...)
			def.Attributes = convertAttributes(deriv.Attributes)
		}
	default:
		model, particles := pickContentModel(ct.Sequence, ct.Choice, ct.All)
		def.Content = model
		def.Fields = convertParticles(particles)
		def.Fields = append(def.Fields, convertGroupRefs(ct.Groups)...)
		def.Attributes = convertAttributes(ct.Attributes)
	}

	return def
}

func convertSimpleType(st *xsdSimpleType) *xsdc.SimpleTypeDef {
	def := &xsdc.SimpleTypeDef{
		Name:      st.Name,
		MinLength: -1,
		MaxLength: -1,
	}

	switch {
	case st.Restriction != nil:
		r := st.Restriction
		def.Base = stripPrefix(r.Base)
		for _, e := range r.Enumerations {
			def.Enumeration = append(def.Enumeration, e.Value)
		}
		if r.Pattern != nil {
			def.Pattern = r.Pattern.Value
		}
		if r.MinLength != nil {
			def.MinLength = atoiOr(r.MinLength.Value, -1)
		}
		if r.MaxLength != nil {
			def.MaxLength = atoiOr(r.MaxLength.Value, -1)
		}
		if r.MinInclusive != nil {
			def.MinInclusive = r.MinInclusive.Value
		}
		if r.MaxInclusive != nil {
			def.MaxInclusive = r.MaxInclusive.Value
		}
	case st.List != nil:
		def.List = true
		def.ItemType = stripPrefix(st.List.ItemType)
		def.Base = "string"
	case st.Union != nil:
		for _, m := range strings.Fields(st.Union.MemberTypes) {
			def.Union = append(def.Union, stripPrefix(m))
		}
		def.Base = "string"
	default:
		def.Base = "string"
	}

	return def
}

// pickContentModel selects the declared grouping and its particle list.
// A complex type with no grouping at all reports an empty sequence.
func pickContentModel(seq, choice, all *xsdParticleList) (xsdc.ContentModel, *xsdParticleList) {
	switch {
	case seq != nil:
		return xsdc.ContentSequence, seq
	case choice != nil:
		return xsdc.ContentChoice, choice
	case all != nil:
		return xsdc.ContentAll, all
	}
	return xsdc.ContentSequence, nil
}

func firstParticleList(seq, choice, all *xsdParticleList) *xsdParticleList {
	_, particles := pickContentModel(seq, choice, all)
	return particles
}

// convertParticles flattens a particle list into fields, recursing through
// nested sequence/choice groupings the way droyo's xsd package flattens
// nested element sequences.
func convertParticles(pl *xsdParticleList) []xsdc.Field {
	if pl == nil {
		return nil
	}

	var fields []xsdc.Field
	for _, e := range pl.Elements {
		name := e.Name
		typeRef := stripPrefix(e.Type)
		if name == "" && e.Ref != "" {
			name = stripPrefix(e.Ref)
			typeRef = stripPrefix(e.Ref)
		}
		if name == "" {
			continue
		}
		fields = append(fields, xsdc.Field{
			Name:      name,
			TypeRef:   typeRef,
			MinOccurs: parseOccurs(e.MinOccurs, 1),
			MaxOccurs: parseOccurs(e.MaxOccurs, 1),
			Default:   e.Default,
		})
	}
	fields = append(fields, convertGroupRefs(pl.Groups)...)
	for i := range pl.Sequences {
		fields = append(fields, convertParticles(&pl.Sequences[i])...)
	}
	for i := range pl.Choices {
		fields = append(fields, convertParticles(&pl.Choices[i])...)
	}
	return fields
}

func convertGroupRefs(groups []xsdGroup) []xsdc.Field {
	var fields []xsdc.Field
	for _, g := range groups {
		if g.Ref == "" {
			continue
		}
		fields = append(fields, xsdc.Field{
			GroupRef:  stripPrefix(g.Ref),
			MinOccurs: parseOccurs(g.MinOccurs, 1),
			MaxOccurs: parseOccurs(g.MaxOccurs, 1),
		})
	}
	return fields
}

func convertAttributes(attrs []xsdAttribute) []xsdc.Attribute {
	var out []xsdc.Attribute
	for _, a := range attrs {
		name := a.Name
		if name == "" && a.Ref != "" {
			name = stripPrefix(a.Ref)
		}
		if name == "" {
			continue
		}
		out = append(out, xsdc.Attribute{
			Name:    name,
			TypeRef: stripPrefix(a.Type),
			Use:     a.Use,
			Default: a.Default,
			Fixed:   a.Fixed,
		})
	}
	return out
}

// parseOccurs converts a minOccurs/maxOccurs attribute value. "unbounded"
// maps to xsdc.Unbounded; empty or unparsable values fall back to def.
func parseOccurs(s string, def int) int {
	if s == "" {
		return def
	}
	if s == "unbounded" {
		return xsdc.Unbounded
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// atoiOr parses a numeric facet value, falling back to def when it does
// not parse.
func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// stripPrefix removes a namespace prefix from a QName. Prefix bookkeeping
// beyond this is out of scope; references resolve by local name against the
// merged tables.
func stripPrefix(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// wrapXMLError converts xml package errors to *xsdc.ParseError with line
// numbers where the decoder provides them.
func wrapXMLError(err error, canonicalID string) error {
	if syntaxErr, ok := err.(*xml.SyntaxError); ok {
		return &xsdc.ParseError{
			SchemaID: canonicalID,
			Line:     int(syntaxErr.Line),
			Msg:      syntaxErr.Msg,
		}
	}
	return &xsdc.ParseError{
		SchemaID: canonicalID,
		Msg:      err.Error(),
	}
}
