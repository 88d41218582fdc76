package codec

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// node is one element of the parsed input document: local name, attributes,
// concatenated character data, and children in document order. Namespace
// prefixes are discarded; matching is by local name throughout.
type node struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*node
}

// attr returns the value of the attribute with the given local name,
// regardless of prefix.
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// childrenNamed collects child elements by local name, in document order.
func (n *node) childrenNamed(local string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == local {
			out = append(out, c)
		}
	}
	return out
}

// parseDocument reads a whole document into a node tree. Errors come
// straight from the underlying xml.Decoder and are not swallowed.
func parseDocument(doc []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{
				name:  t.Name.Local,
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					continue
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	root.trimText()
	return root, nil
}

// trimText normalizes whitespace-only character data away, recursively.
// Indentation between child elements otherwise pollutes text content.
func (n *node) trimText() {
	if strings.TrimSpace(n.text) == "" {
		n.text = ""
	}
	for _, c := range n.children {
		c.trimText()
	}
}
