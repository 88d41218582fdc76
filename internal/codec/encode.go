package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/skaldic/xsdc/pkg/xsdc"
)

// Encode renders a structured value as document text for the declared root
// element. Mirror of Decode: fields are written in their effective schema
// order, so output is deterministic for a given value.
//
// Namespace declarations for every namespace the resolved schema carries
// are emitted once, on the root element.
func (c *Codec) Encode(rootElement string, v xsdc.Value) ([]byte, error) {
	key, err := c.rootType("encode", rootElement)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	if err := c.encodeElement(&buf, key, rootElement, v, c.namespaceAttrs()); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// namespaceAttrs builds the xmlns declarations for the root element: the
// root schema's target namespace as the default namespace, every other
// merged namespace under a stable numbered prefix.
func (c *Codec) namespaceAttrs() []string {
	rootNS := c.rs.Namespaces[c.rs.RootID]

	others := make(map[string]bool)
	for _, src := range c.rs.Sources {
		ns := c.rs.Namespaces[src]
		if ns != "" && ns != rootNS {
			others[ns] = true
		}
	}

	var attrs []string
	if rootNS != "" {
		attrs = append(attrs, fmt.Sprintf(`xmlns=%q`, rootNS))
	}

	sorted := make([]string, 0, len(others))
	for ns := range others {
		sorted = append(sorted, ns)
	}
	sort.Strings(sorted)
	for i, ns := range sorted {
		attrs = append(attrs, fmt.Sprintf(`xmlns:ns%d=%q`, i+1, ns))
	}
	return attrs
}

// encodeElement writes one element for a value of the given type key.
// extraAttrs carries preformatted attributes (namespace declarations on
// the root).
func (c *Codec) encodeElement(buf *bytes.Buffer, key xsdc.TypeKey, name string, v any, extraAttrs []string) error {
	def := c.rs.ComplexType(key)
	if def == nil {
		// Simple-typed element: leaf text only.
		return writeLeaf(buf, name, formatScalar(v), extraAttrs)
	}

	value, isMap := v.(xsdc.Value)
	if !isMap {
		if alt, ok := v.(map[string]any); ok {
			value, isMap = alt, true
		}
	}

	if def.Content == xsdc.ContentSimple && !isMap {
		return writeLeaf(buf, name, formatScalar(v), extraAttrs)
	}
	if !isMap {
		return &xsdc.CodecError{
			Op:   "encode",
			Root: name,
			Msg:  fmt.Sprintf("expected structured value for type %s, got %T", key, v),
		}
	}

	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range extraAttrs {
		buf.WriteByte(' ')
		buf.WriteString(a)
	}
	for _, a := range c.rs.AttributesOf(key) {
		av, ok := value[a.Name]
		if !ok {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		escapeTo(buf, formatScalar(av))
		buf.WriteByte('"')
	}

	if def.Content == xsdc.ContentSimple {
		buf.WriteByte('>')
		escapeTo(buf, formatScalar(value[xsdc.TextKey]))
		buf.WriteString("</")
		buf.WriteString(name)
		buf.WriteByte('>')
		return nil
	}

	fields := c.rs.FieldsOf(key)
	hasText := def.Mixed && value[xsdc.TextKey] != nil

	empty := true
	for _, f := range fields {
		if _, ok := value[f.Name]; ok {
			empty = false
			break
		}
	}
	if empty && !hasText {
		buf.WriteString("/>")
		return nil
	}

	buf.WriteByte('>')
	if hasText {
		escapeTo(buf, formatScalar(value[xsdc.TextKey]))
	}

	for _, f := range fields {
		fv, ok := value[f.Name]
		if !ok {
			continue
		}
		// Only repeated fields explode a slice into multiple occurrences.
		// A scalar field can legitimately hold a slice (list simple
		// types); that stays one element and formats as joined text.
		items := []any{fv}
		if seq, isSeq := fv.([]any); isSeq && f.Cardinality() == xsdc.CardinalityArray {
			items = seq
		}
		for _, item := range items {
			if err := c.encodeField(buf, key.SchemaID, f, item); err != nil {
				return err
			}
		}
	}

	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
	return nil
}

// encodeField writes one occurrence of a field.
func (c *Codec) encodeField(buf *bytes.Buffer, fromID string, f xsdc.Field, v any) error {
	if f.TypeRef == "" || xsdc.IsPrimitive(f.TypeRef) {
		return writeLeaf(buf, f.Name, formatScalar(v), nil)
	}
	key, ok := c.rs.LookupType(fromID, f.TypeRef)
	if !ok {
		return writeLeaf(buf, f.Name, formatScalar(v), nil)
	}
	if st := c.rs.SimpleType(key); st != nil {
		return writeLeaf(buf, f.Name, formatSimple(st, v), nil)
	}
	return c.encodeElement(buf, key, f.Name, v, nil)
}

// writeLeaf writes a leaf element with escaped text content.
func writeLeaf(buf *bytes.Buffer, name, text string, extraAttrs []string) error {
	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range extraAttrs {
		buf.WriteByte(' ')
		buf.WriteString(a)
	}
	if text == "" {
		buf.WriteString("/>")
		return nil
	}
	buf.WriteByte('>')
	escapeTo(buf, text)
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
	return nil
}

// formatSimple renders a value through a declared simple type: list values
// join on single spaces, everything else formats as a scalar.
func formatSimple(st *xsdc.SimpleTypeDef, v any) string {
	if st.List {
		if seq, ok := v.([]any); ok {
			var buf bytes.Buffer
			for i, item := range seq {
				if i > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(formatScalar(item))
			}
			return buf.String()
		}
	}
	return formatScalar(v)
}

// formatScalar renders a leaf value in its lexical form, inverse of the
// decoder's primitive coercion.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// escapeTo writes text XML-escaped. xml.EscapeText never fails on a
// bytes.Buffer.
func escapeTo(buf *bytes.Buffer, text string) {
	_ = xml.EscapeText(buf, []byte(text))
}
