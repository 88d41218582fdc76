package driver

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/skaldic/xsdc/internal/deriver"
	"github.com/skaldic/xsdc/internal/identity"
)

// outputPath expands the output path template for a module name. "{name}"
// is the only placeholder.
func outputPath(outDir, tmpl, name string) string {
	rel := strings.ReplaceAll(tmpl, "{name}", name)
	return filepath.Join(outDir, filepath.FromSlash(rel))
}

// writeModule writes source to the templated output path, creating parent
// directories. When the file already exists with identical content the
// write is skipped, keeping timestamps stable for downstream build tools.
func (d *Driver) writeModule(outDir, tmpl, name string, source []byte) error {
	target := outputPath(outDir, tmpl, name)

	if existing, err := os.ReadFile(target); err == nil {
		if d.calculator.CalculateRaw(existing) == d.calculator.CalculateRaw(source) {
			d.logger.Verbose("unchanged: %s", target)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, source, 0644); err != nil {
		return fmt.Errorf("failed to write module: %w", err)
	}
	d.logger.Verbose("wrote %s", target)
	return nil
}

// removeModule deletes a partially generated module file, so a failed
// schema leaves either a stub or nothing.
func removeModule(outDir, tmpl, name string) {
	_ = os.Remove(outputPath(outDir, tmpl, name))
}

var stubTemplate = template.Must(template.New("stub").Parse(`// Code generated by xsdc. DO NOT EDIT.
//
// Placeholder module: schema {{.SchemaID}} was referenced but not
// available when this batch ran.
// Schema identity: {{.UUID}}
package {{.Package}}

// Roots is empty; the schema was unavailable, so no declarations were
// generated.
var Roots = map[string]string{}
`))

// stubModule renders the placeholder module for an unavailable schema: the
// expected output shape with an empty type table.
func stubModule(canonicalID string) ([]byte, string, error) {
	name := identity.ModuleName(canonicalID)
	var buf bytes.Buffer
	err := stubTemplate.Execute(&buf, map[string]string{
		"SchemaID": canonicalID,
		"UUID":     identity.SchemaID(canonicalID).String(),
		"Package":  name,
	})
	if err != nil {
		return nil, "", err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, "", err
	}
	return src, name, nil
}

var barrelTemplate = template.Must(template.New("barrel").Parse(`// Code generated by xsdc. DO NOT EDIT.
//
// Index module re-exporting every generated schema module.
package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)
{{end}}
{{- range .Aliases}}
type {{.Name}} = {{.Target}}
{{- end}}

// Modules lists every module of this batch in generation order, stubs
// included.
var Modules = []string{
{{- range .Modules}}
	"{{.}}",
{{- end}}
}
`))

type barrelImport struct {
	Alias string
	Path  string
}

type barrelAlias struct {
	Name   string
	Target string
}

type barrelModel struct {
	Package string
	Imports []barrelImport
	Aliases []barrelAlias
	Modules []string
}

// barrelModule renders the index module: one type alias per exported type,
// prefixed with the CamelCase module name to keep same-named types from
// different schemas apart, plus the ordered module list.
func barrelModule(pkg, modulePath string, generated []*deriver.Module, moduleOrder []string) ([]byte, error) {
	model := barrelModel{Package: pkg, Modules: moduleOrder}

	base := strings.TrimSuffix(modulePath, "/")
	for _, m := range generated {
		if len(m.Types) == 0 {
			continue
		}
		model.Imports = append(model.Imports, barrelImport{
			Alias: m.Name,
			Path:  base + "/" + m.Name,
		})
		prefix := deriver.ExportPrefix(m.Name)
		for _, t := range m.Types {
			model.Aliases = append(model.Aliases, barrelAlias{
				Name:   prefix + t,
				Target: m.Name + "." + t,
			})
		}
	}

	var buf bytes.Buffer
	if err := barrelTemplate.Execute(&buf, model); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}
