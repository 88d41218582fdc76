package xsdc

// PrimitiveKind classifies a built-in schema type by how the codec coerces
// its lexical form.
type PrimitiveKind int

const (
	// PrimitiveString covers string and the token/name family; values stay
	// text.
	PrimitiveString PrimitiveKind = iota

	// PrimitiveInteger covers the integer family; values coerce to int64.
	PrimitiveInteger

	// PrimitiveDecimal covers decimal/float/double; values coerce to
	// float64.
	PrimitiveDecimal

	// PrimitiveBoolean coerces "true" and "1" to true, everything else to
	// false.
	PrimitiveBoolean

	// PrimitiveTemporal covers date/time types. Kept as text by default;
	// see the codec's DateMode option.
	PrimitiveTemporal

	// PrimitiveBinary covers base64Binary/hexBinary; values stay text.
	PrimitiveBinary
)

// primitiveKinds maps built-in type local names to their coercion class.
// This is the subset acted on; anything absent is not a primitive and must
// resolve against the merged type tables.
var primitiveKinds = map[string]PrimitiveKind{
	"string":             PrimitiveString,
	"normalizedString":   PrimitiveString,
	"token":              PrimitiveString,
	"language":           PrimitiveString,
	"Name":               PrimitiveString,
	"NCName":             PrimitiveString,
	"NMTOKEN":            PrimitiveString,
	"ID":                 PrimitiveString,
	"IDREF":              PrimitiveString,
	"anyURI":             PrimitiveString,
	"QName":              PrimitiveString,
	"anySimpleType":      PrimitiveString,
	"anyType":            PrimitiveString,
	"duration":           PrimitiveString,

	"integer":            PrimitiveInteger,
	"int":                PrimitiveInteger,
	"long":               PrimitiveInteger,
	"short":              PrimitiveInteger,
	"byte":               PrimitiveInteger,
	"nonNegativeInteger": PrimitiveInteger,
	"nonPositiveInteger": PrimitiveInteger,
	"positiveInteger":    PrimitiveInteger,
	"negativeInteger":    PrimitiveInteger,
	"unsignedLong":       PrimitiveInteger,
	"unsignedInt":        PrimitiveInteger,
	"unsignedShort":      PrimitiveInteger,
	"unsignedByte":       PrimitiveInteger,

	"decimal":            PrimitiveDecimal,
	"float":              PrimitiveDecimal,
	"double":             PrimitiveDecimal,

	"boolean":            PrimitiveBoolean,

	"date":               PrimitiveTemporal,
	"dateTime":           PrimitiveTemporal,
	"time":               PrimitiveTemporal,
	"gYear":              PrimitiveTemporal,
	"gYearMonth":         PrimitiveTemporal,
	"gMonthDay":          PrimitiveTemporal,
	"gDay":               PrimitiveTemporal,
	"gMonth":             PrimitiveTemporal,

	"base64Binary":       PrimitiveBinary,
	"hexBinary":          PrimitiveBinary,
}

// IsPrimitive reports whether name is a built-in schema type rather than a
// reference to be resolved against the merged tables.
func IsPrimitive(name string) bool {
	_, ok := primitiveKinds[name]
	return ok
}

// KindOfPrimitive returns the coercion class for a built-in type name.
// Unknown names classify as PrimitiveString, matching the parser's
// permissive posture.
func KindOfPrimitive(name string) PrimitiveKind {
	if k, ok := primitiveKinds[name]; ok {
		return k
	}
	return PrimitiveString
}
