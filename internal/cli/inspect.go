package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaldic/xsdc/internal/checksum"
	"github.com/skaldic/xsdc/internal/driver"
	"github.com/skaldic/xsdc/internal/files/scanner"
	"github.com/skaldic/xsdc/internal/identity"
	"github.com/skaldic/xsdc/internal/resolver"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <schema_file>",
	Short: "Show the resolved type table of one schema",
	Long: `Inspect parses a schema file, resolves it against the other schemas
in its directory, and prints the resolved type table: root elements,
complex and simple types, inheritance edges, and unresolved references.

Useful for checking what a generate run would see before running it.

Examples:
  xsdc inspect ./schemas/order.xsd
  xsdc inspect ./schemas/types/common.xsd --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	resolved, err := loadResolved(args[0])
	if err != nil {
		return err
	}

	printResolved(resolved, verbose)
	return nil
}

// loadResolved scans the directory of schemaPath, parses every schema in
// it, and resolves the target against its siblings. Sibling parse errors
// only matter if resolution reaches them.
func loadResolved(schemaPath string) (*xsdc.ResolvedSchema, error) {
	sourceDir := filepath.Dir(schemaPath)
	targetID := identity.Canonicalize(filepath.Base(schemaPath))

	sc := scanner.NewScanner(checksum.New())
	scanResult, err := sc.ScanDirectory(sourceDir)
	if err != nil {
		return nil, err
	}
	files := scanResult.ByID()
	if _, ok := files[targetID]; !ok {
		return nil, fmt.Errorf("%w: %s", xsdc.ErrNoSchemaFiles, schemaPath)
	}

	cache := driver.NewUnitCache()
	for id, f := range files {
		if _, err := cache.Load(id, f.Content); err != nil && id == targetID {
			return nil, err
		}
	}

	return resolver.Resolve(cache.Units()[targetID], cache.Units(), nil)
}

func printResolved(rs *xsdc.ResolvedSchema, verbose bool) {
	color := useColor()

	fmt.Println(render(boldStyle, rs.RootID, color))
	fmt.Printf("  schemas merged: %d\n", len(rs.Sources))
	if verbose {
		for _, id := range rs.Sources {
			fmt.Printf("    %s\n", render(mutedStyle, id, color))
		}
	}

	fmt.Printf("  root elements: %d\n", len(rs.Elements))
	for _, name := range rs.ElementOrder {
		fmt.Printf("    %s -> %s\n", name, rs.Elements[name])
	}

	var complexCount, simpleCount int
	for _, key := range rs.KeyOrder {
		if _, ok := rs.ComplexTypes[key]; ok {
			complexCount++
		}
		if _, ok := rs.SimpleTypes[key]; ok {
			simpleCount++
		}
	}
	fmt.Printf("  complex types: %d, simple types: %d\n", complexCount, simpleCount)

	if verbose {
		for _, key := range rs.KeyOrder {
			if _, ok := rs.ComplexTypes[key]; !ok {
				continue
			}
			line := fmt.Sprintf("    %s (%d fields, %d attributes)",
				key, len(rs.FieldsOf(key)), len(rs.AttributesOf(key)))
			if base, ok := rs.Extends[key]; ok {
				line += " extends " + base.String()
			}
			fmt.Println(line)
		}
	}

	if len(rs.Problems) > 0 {
		fmt.Printf("  %s %d unresolved reference(s)\n",
			render(warningStyle, "problems:", color), len(rs.Problems))
		for _, p := range rs.Problems {
			fmt.Printf("    %s in %s (%s)\n", p.Ref, p.Owner, p.Reason)
		}
	}
}
