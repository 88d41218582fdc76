package xsdc

// Value is the structured in-memory form of a decoded document fragment.
//
// A complex element decodes to a map[string]any keyed by field and
// attribute local names, a repeated field to []any, and leaf values to
// string, float64, int64 or bool depending on the declared primitive.
// Simple-content text lives under the TextKey entry when the type also
// carries attributes.
type Value = map[string]any

// TextKey is the map key holding the character content of a simple-content
// element that also has attributes.
const TextKey = "#text"
