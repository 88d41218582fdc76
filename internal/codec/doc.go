// Package codec decodes XML documents into structured values and encodes
// them back, driven by a ResolvedSchema.
//
// Decoding walks the target type's effective field list, inherited fields
// included, matching attributes and child elements by local name regardless
// of the namespace prefix the source document used. Encoding is the mirror
// operation and additionally emits namespace declarations once on the root
// element for every namespace the resolved schema carries.
package codec
