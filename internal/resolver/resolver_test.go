package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skaldic/xsdc/internal/parser"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// parseUnits builds the available-units map from schema source keyed by
// canonical id.
func parseUnits(t *testing.T, sources map[string]string) map[string]*xsdc.SchemaUnit {
	t.Helper()
	units := make(map[string]*xsdc.SchemaUnit, len(sources))
	for id, src := range sources {
		unit, err := parser.Parse([]byte(src), id)
		require.NoError(t, err, "parsing %s", id)
		units[id] = unit
	}
	return units
}

const schemaOpen = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">`

// A root that includes a dependency sharing its basename must resolve; the
// two files are distinct schemas under path identity.
func TestResolve_SameBasenameInclude(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./devc.xsd": schemaOpen + `
  <xs:include schemaLocation="types/devc.xsd"/>
  <xs:element name="Device" type="DeviceType"/>
  <xs:complexType name="DeviceType">
    <xs:sequence>
      <xs:element name="Spec" type="SpecType"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
		"./types/devc.xsd": schemaOpen + `
  <xs:complexType name="SpecType">
    <xs:sequence>
      <xs:element name="Model" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./devc.xsd"], units, nil)
	require.NoError(t, err)

	assert.Equal(t, "./devc.xsd", rs.RootID)
	assert.Equal(t, []string{"./types/devc.xsd", "./devc.xsd"}, rs.Sources)
	assert.Empty(t, rs.Problems)

	spec, ok := rs.LookupType("./devc.xsd", "SpecType")
	require.True(t, ok)
	assert.Equal(t, "./types/devc.xsd", spec.SchemaID)
}

// The historical recursion defect: devc.xsd declares AbapValuesType with an
// optional DEVC field of asx:DevcType and includes types/devc.xsd, which
// declares DevcType with a CTEXT field. Under path identity this resolves
// cleanly with both types in the merged table.
func TestResolve_AbapValuesWithNestedDevcInclude(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./devc.xsd": schemaOpen + `
  <xs:include schemaLocation="types/devc.xsd"/>
  <xs:complexType name="AbapValuesType">
    <xs:sequence>
      <xs:element name="DEVC" type="asx:DevcType" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
		"./types/devc.xsd": schemaOpen + `
  <xs:complexType name="DevcType">
    <xs:sequence>
      <xs:element name="CTEXT" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./devc.xsd"], units, nil)
	require.NoError(t, err)
	assert.Empty(t, rs.Problems)

	values, ok := rs.LookupType("./devc.xsd", "AbapValuesType")
	require.True(t, ok)
	devc, ok := rs.LookupType("./devc.xsd", "DevcType")
	require.True(t, ok)
	assert.Equal(t, "./types/devc.xsd", devc.SchemaID)

	fields := rs.FieldsOf(values)
	require.Len(t, fields, 1)
	assert.Equal(t, "DEVC", fields[0].Name)
	assert.Equal(t, "DevcType", fields[0].TypeRef)
	assert.Equal(t, xsdc.CardinalityOptional, fields[0].Cardinality())

	nested := rs.FieldsOf(devc)
	require.Len(t, nested, 1)
	assert.Equal(t, "CTEXT", nested[0].Name)
}

func TestResolve_DiamondDependency(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:include schemaLocation="a.xsd"/>
  <xs:include schemaLocation="b.xsd"/>
</xs:schema>`,
		"./a.xsd": schemaOpen + `
  <xs:include schemaLocation="common.xsd"/>
  <xs:complexType name="AType"><xs:sequence/></xs:complexType>
</xs:schema>`,
		"./b.xsd": schemaOpen + `
  <xs:include schemaLocation="common.xsd"/>
  <xs:complexType name="BType"><xs:sequence/></xs:complexType>
</xs:schema>`,
		"./common.xsd": schemaOpen + `
  <xs:complexType name="CommonType"><xs:sequence/></xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	// common merged once, before both dependents.
	assert.Equal(t, []string{"./common.xsd", "./a.xsd", "./b.xsd", "./root.xsd"}, rs.Sources)
}

func TestResolve_CycleDetected(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./a.xsd": schemaOpen + `<xs:include schemaLocation="b.xsd"/></xs:schema>`,
		"./b.xsd": schemaOpen + `<xs:include schemaLocation="a.xsd"/></xs:schema>`,
	})

	_, err := Resolve(units["./a.xsd"], units, nil)
	require.Error(t, err)

	var resErr *xsdc.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "cycle", resErr.Kind)
	assert.Equal(t, "./a.xsd", resErr.SchemaID)
	assert.Equal(t, []string{"./a.xsd", "./b.xsd"}, resErr.Path)
}

func TestResolve_SelfInclude(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./a.xsd": schemaOpen + `<xs:include schemaLocation="a.xsd"/></xs:schema>`,
	})

	_, err := Resolve(units["./a.xsd"], units, nil)
	var resErr *xsdc.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "cycle", resErr.Kind)
}

func TestResolve_MissingSchema(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `<xs:include schemaLocation="gone.xsd"/></xs:schema>`,
	})

	_, err := Resolve(units["./root.xsd"], units, nil)
	require.Error(t, err)

	var resErr *xsdc.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "missing schema", resErr.Kind)
	assert.Equal(t, "./gone.xsd", resErr.SchemaID)
	assert.Contains(t, resErr.Msg, "gone.xsd")
	assert.Contains(t, resErr.Msg, "./root.xsd")
}

// Relative locations resolve against the including file's directory.
func TestResolve_RelativeLocations(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./nested/inner.xsd": schemaOpen + `
  <xs:include schemaLocation="../shared.xsd"/>
  <xs:include schemaLocation="deeper/leaf.xsd"/>
</xs:schema>`,
		"./shared.xsd":             schemaOpen + `</xs:schema>`,
		"./nested/deeper/leaf.xsd": schemaOpen + `</xs:schema>`,
	})

	rs, err := Resolve(units["./nested/inner.xsd"], units, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"./shared.xsd", "./nested/deeper/leaf.xsd", "./nested/inner.xsd"}, rs.Sources)
}

// A missing type reference is recorded, not fatal; sibling types resolve.
func TestResolve_MissingTypeIsProblem(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:complexType name="Good">
    <xs:sequence><xs:element name="X" type="xs:string"/></xs:sequence>
  </xs:complexType>
  <xs:complexType name="Bad">
    <xs:sequence><xs:element name="Y" type="NoSuchType"/></xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	require.Len(t, rs.Problems, 1)
	p := rs.Problems[0]
	assert.Equal(t, "Bad", p.Owner.Name)
	assert.Equal(t, "Y", p.Field)
	assert.Equal(t, "NoSuchType", p.Ref)

	_, ok := rs.LookupType("./root.xsd", "Good")
	assert.True(t, ok, "sibling type must still resolve")
}

func TestResolve_MissingBaseTypeIsProblem(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:complexType name="Derived">
    <xs:complexContent>
      <xs:extension base="GoneBase">
        <xs:sequence/>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	require.Len(t, rs.Problems, 1)
	assert.Equal(t, "missing base type", rs.Problems[0].Reason)
	assert.Empty(t, rs.Extends)
}

func TestResolve_InheritanceAcrossSchemas(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./derived.xsd": schemaOpen + `
  <xs:include schemaLocation="base.xsd"/>
  <xs:complexType name="DerivedType">
    <xs:complexContent>
      <xs:extension base="BaseType">
        <xs:sequence>
          <xs:element name="Extra" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
		"./base.xsd": schemaOpen + `
  <xs:complexType name="BaseType">
    <xs:sequence>
      <xs:element name="Id" type="xs:string"/>
    </xs:sequence>
    <xs:attribute name="version" type="xs:string"/>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./derived.xsd"], units, nil)
	require.NoError(t, err)

	derived := xsdc.TypeKey{SchemaID: "./derived.xsd", Name: "DerivedType"}
	base, ok := rs.Extends[derived]
	require.True(t, ok)
	assert.Equal(t, xsdc.TypeKey{SchemaID: "./base.xsd", Name: "BaseType"}, base)

	fields := rs.FieldsOf(derived)
	require.Len(t, fields, 2)
	assert.Equal(t, "Extra", fields[0].Name)
	assert.Equal(t, "Id", fields[1].Name)

	attrs := rs.AttributesOf(derived)
	require.Len(t, attrs, 1)
	assert.Equal(t, "version", attrs[0].Name)
}

func TestResolve_GroupInlining(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:group name="Pair">
    <xs:sequence>
      <xs:element name="Key" type="xs:string"/>
      <xs:element name="Value" type="xs:string"/>
    </xs:sequence>
  </xs:group>
  <xs:complexType name="Entry">
    <xs:sequence>
      <xs:element name="Id" type="xs:string"/>
      <xs:group ref="Pair" maxOccurs="unbounded"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	entry := rs.ComplexType(xsdc.TypeKey{SchemaID: "./root.xsd", Name: "Entry"})
	require.NotNil(t, entry)
	require.Len(t, entry.Fields, 3)
	assert.Equal(t, "Id", entry.Fields[0].Name)
	assert.Equal(t, "Key", entry.Fields[1].Name)
	assert.Equal(t, xsdc.Unbounded, entry.Fields[1].MaxOccurs, "reference bounds win")
	assert.Equal(t, "Value", entry.Fields[2].Name)
}

func TestResolve_MissingGroupIsProblem(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:complexType name="Entry">
    <xs:sequence>
      <xs:group ref="NoSuchGroup"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	require.Len(t, rs.Problems, 1)
	assert.Equal(t, "group not found", rs.Problems[0].Reason)
}

func TestResolve_RecursiveGroupIsProblem(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:group name="Loop">
    <xs:sequence>
      <xs:element name="Step" type="xs:string"/>
      <xs:group ref="Loop"/>
    </xs:sequence>
  </xs:group>
  <xs:complexType name="T">
    <xs:sequence>
      <xs:group ref="Loop"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	typ := rs.ComplexType(xsdc.TypeKey{SchemaID: "./root.xsd", Name: "T"})
	require.NotNil(t, typ)
	require.Len(t, typ.Fields, 1)
	assert.Equal(t, "Step", typ.Fields[0].Name)

	require.NotEmpty(t, rs.Problems)
	assert.Equal(t, "recursive group reference", rs.Problems[0].Reason)
}

func TestResolve_RootElements(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": schemaOpen + `
  <xs:element name="Order" type="OrderType"/>
  <xs:element name="Receipt" type="xs:string"/>
  <xs:complexType name="OrderType"><xs:sequence/></xs:complexType>
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Order", "Receipt"}, rs.ElementOrder)
	assert.Equal(t, xsdc.TypeKey{SchemaID: "./root.xsd", Name: "OrderType"}, rs.Elements["Order"])
	assert.Empty(t, rs.Problems, "primitive-typed root elements are fine")
}

// Namespace declarations survive the merge for the encoder.
func TestResolve_Namespaces(t *testing.T) {
	units := parseUnits(t, map[string]string{
		"./root.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:root">
  <xs:import namespace="urn:dep" schemaLocation="dep.xsd"/>
</xs:schema>`,
		"./dep.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:dep">
</xs:schema>`,
	})

	rs, err := Resolve(units["./root.xsd"], units, nil)
	require.NoError(t, err)

	assert.Equal(t, "urn:root", rs.Namespaces["./root.xsd"])
	assert.Equal(t, "urn:dep", rs.Namespaces["./dep.xsd"])
}
