package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skaldic/xsdc/internal/checksum"
	"github.com/skaldic/xsdc/internal/files/scanner"
	"github.com/skaldic/xsdc/internal/logging"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

const schemaOpen = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">`

func newTestDriver() *Driver {
	return New(scanner.NewScanner(checksum.New()), NewUnitCache(), checksum.New(), logging.NewNullLogger())
}

// writeSchemas materializes schema sources under dir, keyed by relative
// path.
func writeSchemas(t *testing.T, dir string, sources map[string]string) {
	t.Helper()
	for rel, src := range sources {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
		require.NoError(t, os.WriteFile(target, []byte(src), 0644))
	}
}

func readOutput(t *testing.T, outDir, rel string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(content)
}

var orderSources = map[string]string{
	"order.xsd": schemaOpen + `
  <xs:include schemaLocation="types/common.xsd"/>
  <xs:element name="Order" type="OrderType"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="Id" type="xs:string"/>
      <xs:element name="Meta" type="MetaType"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	"types/common.xsd": schemaOpen + `
  <xs:complexType name="MetaType">
    <xs:sequence>
      <xs:element name="Created" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
}

func TestRun_GeneratesFullClosure(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, orderSources)

	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: src,
		OutDir:    out,
		Roots:     []string{"order"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"./order.xsd"}, report.Roots)
	assert.Equal(t, []string{"./order.xsd", "./types/common.xsd"}, report.Generated)
	assert.Empty(t, report.Stubbed)
	assert.Empty(t, report.Failed)
	assert.False(t, report.RootFailed(report.Roots))
	assert.Equal(t, 2, report.ClosureSize())

	orderSrc := readOutput(t, out, "order/order.go")
	assert.Contains(t, orderSrc, "package order")
	assert.Contains(t, orderSrc, "types_common.MetaType")

	commonSrc := readOutput(t, out, "types_common/types_common.go")
	assert.Contains(t, commonSrc, "package types_common")

	barrel := readOutput(t, out, xsdc.BarrelFileName)
	assert.Contains(t, barrel, "package schemas")
	assert.Contains(t, barrel, "type OrderOrderType = order.OrderType")
	assert.Contains(t, barrel, "type TypesCommonMetaType = types_common.MetaType")
	assert.Contains(t, barrel, `"order",`)
	assert.Contains(t, barrel, `"types_common",`)
}

func TestRun_MissingDependencyFailsRootWithoutStubs(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, map[string]string{
		"order.xsd": schemaOpen + `
  <xs:include schemaLocation="missing.xsd"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="Ref" type="GoneType"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: src,
		OutDir:    out,
		Roots:     []string{"order"},
	})
	require.NoError(t, err, "per-schema failures never abort the batch")

	assert.Empty(t, report.Generated)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "./missing.xsd", report.Failed[0].SchemaID)
	assert.Equal(t, "schema file not found", report.Failed[0].Err)
	assert.Equal(t, "./order.xsd", report.Failed[1].SchemaID)
	assert.True(t, report.RootFailed(report.Roots))
	assert.Equal(t, 2, report.ClosureSize(), "failures still cover the closure")
}

func TestRun_StubsReplaceMissingSchemas(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, map[string]string{
		"order.xsd": schemaOpen + `
  <xs:include schemaLocation="missing.xsd"/>
  <xs:element name="Order" type="OrderType"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="Ref" type="GoneType"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: src,
		OutDir:    out,
		Roots:     []string{"order"},
		Stubs:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"./order.xsd"}, report.Generated, "root generates against the stub")
	assert.Equal(t, []string{"./missing.xsd"}, report.Stubbed)
	assert.Empty(t, report.Failed)
	assert.False(t, report.RootFailed(report.Roots))

	stub := readOutput(t, out, "missing/missing.go")
	assert.Contains(t, stub, "package missing")
	assert.Contains(t, stub, "Placeholder module")
	assert.Contains(t, stub, "var Roots = map[string]string{}")

	orderSrc := readOutput(t, out, "order/order.go")
	assert.Contains(t, orderSrc, "Ref string", "unresolved reference degrades to string")

	barrel := readOutput(t, out, xsdc.BarrelFileName)
	assert.Contains(t, barrel, `"order",`)
	assert.Contains(t, barrel, `"missing",`, "stubs appear in the module list")
}

func TestRun_MalformedSchemaLandsInFailed(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, map[string]string{
		"bad.xsd": schemaOpen + `<xs:complexType name="Broken"`,
	})

	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: src,
		OutDir:    out,
		Roots:     []string{"bad"},
	})
	require.NoError(t, err)

	assert.Empty(t, report.Generated)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "./bad.xsd", report.Failed[0].SchemaID)
	assert.Contains(t, report.Failed[0].Err, "parse error")
	assert.True(t, report.RootFailed(report.Roots))

	barrel := readOutput(t, out, xsdc.BarrelFileName)
	assert.Contains(t, barrel, "package schemas", "barrel is written even when everything failed")
}

func TestRun_CleanWipesStaleOutput(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, orderSources)
	stale := filepath.Join(out, "stale.go")
	require.NoError(t, os.WriteFile(stale, []byte("package stale\n"), 0644))

	_, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: src,
		OutDir:    out,
		Roots:     []string{"order"},
		Clean:     true,
	})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale files are removed")
	_, err = os.Stat(filepath.Join(out, "order", "order.go"))
	assert.NoError(t, err)
}

func TestRun_ExpandPassFlattensDeepChains(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, map[string]string{
		"a.xsd": schemaOpen + `
  <xs:include schemaLocation="b.xsd"/>
  <xs:complexType name="AType">
    <xs:complexContent>
      <xs:extension base="BType">
        <xs:sequence><xs:element name="Aid" type="xs:string"/></xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
		"b.xsd": schemaOpen + `
  <xs:include schemaLocation="c.xsd"/>
  <xs:complexType name="BType">
    <xs:complexContent>
      <xs:extension base="CType">
        <xs:sequence><xs:element name="Bid" type="xs:string"/></xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
		"c.xsd": schemaOpen + `
  <xs:complexType name="CType">
    <xs:sequence><xs:element name="Cid" type="xs:string"/></xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})

	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir:    src,
		OutDir:       out,
		Roots:        []string{"a"},
		ExtractTypes: true,
		ExpandDepth:  1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"./a.xsd"}, report.Expanded, "only chains deeper than the ceiling expand")

	aSrc := readOutput(t, out, "a/a.go")
	assert.Contains(t, aSrc, "Aid")
	assert.Contains(t, aSrc, "Bid")
	assert.Contains(t, aSrc, "Cid", "inherited fields flatten into the expanded struct")
	assert.NotContains(t, aSrc, "b.BType", "no cross-module embed remains")

	bSrc := readOutput(t, out, "b/b.go")
	assert.Contains(t, bSrc, "c.CType", "modules under the ceiling keep their embeds")
}

func TestRun_NoSchemaFiles(t *testing.T) {
	report, err := newTestDriver().Run(context.Background(), Config{
		SourceDir: t.TempDir(),
		OutDir:    t.TempDir(),
		Roots:     []string{"order"},
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, xsdc.ErrNoSchemaFiles)
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing source dir", Config{OutDir: "out", Roots: []string{"a"}}},
		{"missing out dir", Config{SourceDir: "src", Roots: []string{"a"}}},
		{"no roots", Config{SourceDir: "src", OutDir: "out"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestDriver().Run(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, xsdc.ErrInvalidConfig)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	src := t.TempDir()
	writeSchemas(t, src, orderSources)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDriver().Run(ctx, Config{
		SourceDir: src,
		OutDir:    t.TempDir(),
		Roots:     []string{"order"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := Config{SourceDir: "src", OutDir: "out", Roots: []string{"a"}}
	require.NoError(t, cfg.validate())

	assert.Equal(t, "schemas", cfg.Package)
	assert.Equal(t, "example.com/schemas", cfg.ModulePath)
	assert.Equal(t, xsdc.DefaultOutputTemplate, cfg.OutputTemplate)
	assert.Equal(t, xsdc.DefaultExpandDepth, cfg.ExpandDepth)
	assert.NotNil(t, cfg.Locate)
}

func TestMatchRoot(t *testing.T) {
	files := map[string]scanner.SchemaFile{
		"./order.xsd":      {CanonicalID: "./order.xsd", Name: "order.xsd"},
		"./types/devc.xsd": {CanonicalID: "./types/devc.xsd", Name: "devc.xsd"},
	}

	tests := []struct {
		root   string
		wantID string
		wantOK bool
	}{
		{"./order.xsd", "./order.xsd", true},
		{"order", "./order.xsd", true},
		{"order.xsd", "./order.xsd", true},
		{"ORDER", "./order.xsd", true},
		{"devc", "./types/devc.xsd", true},
		{"nope", "", false},
	}
	for _, tt := range tests {
		id, ok := matchRoot(tt.root, files)
		assert.Equal(t, tt.wantOK, ok, "matchRoot(%q)", tt.root)
		assert.Equal(t, tt.wantID, id, "matchRoot(%q)", tt.root)
	}
}

// Two files sharing a basename must resolve to the same id on every run:
// the fallback picks the sorted-first canonical id.
func TestMatchRoot_SameBasenameIsDeterministic(t *testing.T) {
	files := map[string]scanner.SchemaFile{
		"./types/devc.xsd": {CanonicalID: "./types/devc.xsd", Name: "devc.xsd"},
		"./devc.xsd":       {CanonicalID: "./devc.xsd", Name: "devc.xsd"},
	}

	for i := 0; i < 20; i++ {
		id, ok := matchRoot("devc", files)
		require.True(t, ok)
		assert.Equal(t, "./devc.xsd", id)
	}
}

func TestNew_NilDependenciesPanic(t *testing.T) {
	sc := scanner.NewScanner(checksum.New())
	cache := NewUnitCache()
	calc := checksum.New()
	logger := logging.NewNullLogger()

	assert.Panics(t, func() { New(nil, cache, calc, logger) })
	assert.Panics(t, func() { New(sc, nil, calc, logger) })
	assert.Panics(t, func() { New(sc, cache, nil, logger) })
	assert.Panics(t, func() { New(sc, cache, calc, nil) })
}

// Re-running against unchanged inputs must rewrite nothing the second
// time; identical content short-circuits before the write.
func TestRun_SecondRunKeepsIdenticalOutput(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeSchemas(t, src, orderSources)
	cfg := Config{SourceDir: src, OutDir: out, Roots: []string{"order"}}

	_, err := newTestDriver().Run(context.Background(), cfg)
	require.NoError(t, err)
	first := readOutput(t, out, "order/order.go")

	_, err = newTestDriver().Run(context.Background(), cfg)
	require.NoError(t, err)
	second := readOutput(t, out, "order/order.go")

	assert.Equal(t, first, second)
	if !strings.Contains(first, "package order") {
		t.Fatalf("unexpected module content: %s", first)
	}
}

func TestUnitCache(t *testing.T) {
	cache := NewUnitCache()
	content := []byte(schemaOpen + `<xs:complexType name="T"><xs:sequence/></xs:complexType></xs:schema>`)

	unit, err := cache.Load("./t.xsd", content)
	require.NoError(t, err)
	again, err := cache.Load("./t.xsd", nil)
	require.NoError(t, err)
	assert.Same(t, unit, again, "second load returns the cached unit without reparsing")

	_, err = cache.Load("./bad.xsd", []byte("<broken"))
	require.Error(t, err)
	_, err2 := cache.Load("./bad.xsd", content)
	assert.Equal(t, err, err2, "parse failures are cached")

	stub := &xsdc.SchemaUnit{CanonicalID: "./stub.xsd"}
	cache.Put(stub)
	assert.Same(t, stub, cache.Units()["./stub.xsd"])

	var pe *xsdc.ParseError
	assert.True(t, errors.As(err, &pe))
}
