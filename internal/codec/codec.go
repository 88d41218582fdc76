package codec

import (
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// DateMode controls how date/dateTime values are decoded.
type DateMode int

const (
	// DateAsText keeps temporal values as their lexical text. This is the
	// default: it avoids committing to a timezone policy on behalf of the
	// caller.
	DateAsText DateMode = iota

	// DateAsTime parses temporal values into time.Time, falling back to
	// text when the lexical form does not parse.
	DateAsTime
)

// Options configures a Codec.
type Options struct {
	DateMode DateMode
}

// Codec decodes and encodes documents against one ResolvedSchema. Safe for
// concurrent use; the resolved schema is read-only.
type Codec struct {
	rs   *xsdc.ResolvedSchema
	opts Options
}

// New creates a Codec for a resolved schema.
// Panics if rs is nil; that is a programmer error, not a runtime condition.
func New(rs *xsdc.ResolvedSchema, opts Options) *Codec {
	if rs == nil {
		panic("resolved schema cannot be nil")
	}
	return &Codec{rs: rs, opts: opts}
}

// rootType resolves the requested root element to its complex type key.
func (c *Codec) rootType(op, rootElement string) (xsdc.TypeKey, error) {
	ref, ok := c.rs.Elements[rootElement]
	if !ok {
		return xsdc.TypeKey{}, &xsdc.CodecError{Op: op, Root: rootElement, Msg: "unknown root"}
	}
	key, ok := c.rs.LookupType(ref.SchemaID, ref.Name)
	if !ok {
		return xsdc.TypeKey{}, &xsdc.CodecError{
			Op:   op,
			Root: rootElement,
			Msg:  "root element type " + ref.Name + " is not declared in the resolved schema",
		}
	}
	return key, nil
}
