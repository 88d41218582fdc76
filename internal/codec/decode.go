package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skaldic/xsdc/pkg/xsdc"
)

// Decode parses documentText and builds the structured value of the
// declared root element.
//
// Fails with *xsdc.CodecError when rootElement has no declaration in the
// resolved schema or the document root does not match it. Malformed
// documents surface the underlying document reader's error.
func (c *Codec) Decode(rootElement string, documentText []byte) (xsdc.Value, error) {
	key, err := c.rootType("decode", rootElement)
	if err != nil {
		return nil, err
	}

	root, err := parseDocument(documentText)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", rootElement, err)
	}
	if root.name != rootElement {
		return nil, &xsdc.CodecError{
			Op:   "decode",
			Root: rootElement,
			Msg:  "document root is <" + root.name + ">",
		}
	}

	v := c.decodeComplex(key, root)
	value, ok := v.(xsdc.Value)
	if !ok {
		value = xsdc.Value{xsdc.TextKey: v}
	}
	return value, nil
}

// decodeComplex builds the value of one element against a complex type.
// Returns a map for structured content, or a scalar for simple content
// without attributes.
func (c *Codec) decodeComplex(key xsdc.TypeKey, n *node) any {
	def := c.rs.ComplexType(key)
	if def == nil {
		// Reference resolved to a simple type: treat the element as a leaf.
		if st := c.rs.SimpleType(key); st != nil {
			return c.coerceSimple(key.SchemaID, st, n.text)
		}
		return n.text
	}

	attrs := c.rs.AttributesOf(key)

	if def.Content == xsdc.ContentSimple && len(attrs) == 0 {
		return c.coerceNamed(key.SchemaID, def.SimpleContentBase, n.text)
	}

	out := xsdc.Value{}

	for _, a := range attrs {
		raw, present := n.attr(a.Name)
		if !present {
			if a.Fixed != "" {
				raw = a.Fixed
			} else if a.Default != "" {
				raw = a.Default
			} else {
				continue
			}
		}
		out[a.Name] = c.coerceNamed(key.SchemaID, a.TypeRef, raw)
	}

	if def.Content == xsdc.ContentSimple {
		out[xsdc.TextKey] = c.coerceNamed(key.SchemaID, def.SimpleContentBase, n.text)
		return out
	}

	if def.Mixed && n.text != "" {
		out[xsdc.TextKey] = n.text
	}

	for _, f := range c.rs.FieldsOf(key) {
		matches := n.childrenNamed(f.Name)
		if len(matches) == 0 {
			if f.Default != "" && f.Cardinality() != xsdc.CardinalityArray {
				out[f.Name] = c.coerceNamed(key.SchemaID, f.TypeRef, f.Default)
			}
			continue
		}

		if f.Cardinality() == xsdc.CardinalityArray || len(matches) > 1 {
			seq := make([]any, 0, len(matches))
			for _, m := range matches {
				seq = append(seq, c.decodeField(key.SchemaID, f, m))
			}
			out[f.Name] = seq
			continue
		}

		out[f.Name] = c.decodeField(key.SchemaID, f, matches[0])
	}

	return out
}

// decodeField decodes one matched child element according to the field's
// type reference.
func (c *Codec) decodeField(fromID string, f xsdc.Field, n *node) any {
	if f.TypeRef == "" {
		return n.text
	}
	if xsdc.IsPrimitive(f.TypeRef) {
		return c.coercePrimitive(xsdc.KindOfPrimitive(f.TypeRef), n.text)
	}
	key, ok := c.rs.LookupType(fromID, f.TypeRef)
	if !ok {
		// Unresolvable reference was already recorded as a resolution
		// problem; stay permissive here.
		return n.text
	}
	if st := c.rs.SimpleType(key); st != nil {
		return c.coerceSimple(key.SchemaID, st, n.text)
	}
	return c.decodeComplex(key, n)
}

// coerceNamed coerces a lexical value through a type name that may be a
// primitive or a declared simple type.
func (c *Codec) coerceNamed(fromID, typeName, text string) any {
	if typeName == "" {
		return text
	}
	if xsdc.IsPrimitive(typeName) {
		return c.coercePrimitive(xsdc.KindOfPrimitive(typeName), text)
	}
	if key, ok := c.rs.LookupType(fromID, typeName); ok {
		if st := c.rs.SimpleType(key); st != nil {
			return c.coerceSimple(key.SchemaID, st, text)
		}
	}
	return text
}

// coerceSimple coerces through a declared simple type: lists split on
// whitespace, everything else follows the base primitive.
func (c *Codec) coerceSimple(fromID string, st *xsdc.SimpleTypeDef, text string) any {
	if st.List {
		items := strings.Fields(text)
		seq := make([]any, 0, len(items))
		for _, item := range items {
			seq = append(seq, c.coerceNamed(fromID, st.ItemType, item))
		}
		return seq
	}
	return c.coerceNamed(fromID, st.Base, text)
}

// coercePrimitive applies the primitive coercion rules. Lexically invalid
// values fall back to text rather than failing the decode; structural
// shape, not value validity, is this tool's concern.
func (c *Codec) coercePrimitive(kind xsdc.PrimitiveKind, text string) any {
	switch kind {
	case xsdc.PrimitiveInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return n
		}
		return text
	case xsdc.PrimitiveDecimal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return f
		}
		return text
	case xsdc.PrimitiveBoolean:
		t := strings.TrimSpace(text)
		return t == "true" || t == "1"
	case xsdc.PrimitiveTemporal:
		if c.opts.DateMode == DateAsTime {
			t := strings.TrimSpace(text)
			if parsed, err := time.Parse(time.RFC3339, t); err == nil {
				return parsed
			}
			if parsed, err := time.Parse("2006-01-02", t); err == nil {
				return parsed
			}
		}
		return text
	default:
		return text
	}
}
