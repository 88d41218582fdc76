package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skaldic/xsdc/internal/checksum"
	"github.com/skaldic/xsdc/internal/deriver"
	"github.com/skaldic/xsdc/internal/files/scanner"
	"github.com/skaldic/xsdc/internal/identity"
	"github.com/skaldic/xsdc/internal/resolver"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// Config is one batch run's configuration.
type Config struct {
	// SourceDir is the directory scanned for schema files.
	SourceDir string

	// OutDir receives the generated modules.
	OutDir string

	// Roots is the ordered list of root schema names to generate. Entries
	// match either a canonical id ("./types/devc.xsd") or a basename with
	// or without extension ("devc").
	Roots []string

	// Package is the Go package name of the barrel module.
	Package string

	// ModulePath is the Go import base path under which generated modules
	// will live.
	ModulePath string

	// Stubs emits placeholder modules for schemas that are referenced but
	// not available, instead of failing them.
	Stubs bool

	// Clean wipes OutDir before generating.
	Clean bool

	// ExtractTypes enables the expand-and-embed second pass.
	ExtractTypes bool

	// ExpandDepth is the inheritance chain depth above which a module is
	// re-emitted fully flattened; 0 means xsdc.DefaultExpandDepth.
	ExpandDepth int

	// OutputTemplate maps a module name to its output path below OutDir;
	// empty means xsdc.DefaultOutputTemplate.
	OutputTemplate string

	// Locate maps raw schemaLocation strings to canonical ids; nil means
	// xsdc.DefaultLocationResolver.
	Locate xsdc.LocationResolver
}

// validate normalizes defaults and rejects unusable configurations.
func (c *Config) validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("%w: source directory is required", xsdc.ErrInvalidConfig)
	}
	if c.OutDir == "" {
		return fmt.Errorf("%w: output directory is required", xsdc.ErrInvalidConfig)
	}
	if len(c.Roots) == 0 {
		return fmt.Errorf("%w: at least one root schema is required", xsdc.ErrInvalidConfig)
	}
	if c.Package == "" {
		c.Package = "schemas"
	}
	if c.ModulePath == "" {
		c.ModulePath = "example.com/" + c.Package
	}
	if c.OutputTemplate == "" {
		c.OutputTemplate = xsdc.DefaultOutputTemplate
	}
	if c.ExpandDepth <= 0 {
		c.ExpandDepth = xsdc.DefaultExpandDepth
	}
	if c.Locate == nil {
		c.Locate = xsdc.DefaultLocationResolver
	}
	return nil
}

// Driver runs batches. One Driver instance serves one Run call at a time;
// the unit cache it owns is not synchronized.
type Driver struct {
	scanner    *scanner.Scanner
	cache      *UnitCache
	calculator checksum.Calculator
	logger     xsdc.Logger
}

// New creates a Driver with all dependencies injected.
// Panics on nil dependencies: those are programmer errors that should fail
// loudly at startup, not surface as nil dereferences mid-run.
func New(sc *scanner.Scanner, cache *UnitCache, calculator checksum.Calculator, logger xsdc.Logger) *Driver {
	if sc == nil {
		panic("scanner cannot be nil")
	}
	if cache == nil {
		panic("cache cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Driver{scanner: sc, cache: cache, calculator: calculator, logger: logger}
}

// Run executes one batch: scan, closure, parse, resolve, derive, emit.
//
// Per-schema failures land in the report's failed partition and never
// abort the batch; only configuration-level problems (no input files,
// invalid config) return an error. The report's partitions are disjoint
// and cover the full closure.
func (d *Driver) Run(ctx context.Context, cfg Config) (*xsdc.Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	scanResult, err := d.scanner.ScanDirectory(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	if len(scanResult.Files) == 0 {
		return nil, fmt.Errorf("%w in %s", xsdc.ErrNoSchemaFiles, cfg.SourceDir)
	}
	files := scanResult.ByID()
	d.logger.Verbose("scanned %d schema files in %s", len(scanResult.Files), cfg.SourceDir)

	report := &xsdc.Report{}

	rootIDs := make([]string, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		id, ok := matchRoot(root, files)
		if !ok {
			// Keep the unmatched root in the closure so the partition law
			// still covers it; it becomes a stub or a failure below.
			id = identity.Canonicalize(root)
		}
		rootIDs = append(rootIDs, id)
	}
	report.Roots = rootIDs

	closure := closureFrom(rootIDs, files, cfg.Locate)
	d.logger.Verbose("dependency closure: %d schemas", len(closure))

	if cfg.Clean {
		if err := cleanDir(cfg.OutDir); err != nil {
			return nil, err
		}
	}

	// First pass: parse everything available, stub or fail the rest.
	missing := make(map[string]bool)
	failed := make(map[string]bool)
	for _, id := range closure {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		file, ok := files[id]
		if !ok {
			missing[id] = true
			if !cfg.Stubs {
				failed[id] = true
				report.Failed = append(report.Failed, xsdc.Failure{
					SchemaID: id,
					Err:      "schema file not found",
				})
			}
			continue
		}

		if _, err := d.cache.Load(id, file.Content); err != nil {
			failed[id] = true
			report.Failed = append(report.Failed, xsdc.Failure{SchemaID: id, Err: err.Error()})
			d.logger.Error("parse failed: %s: %v", id, err)
		}
	}

	// Stub units let dependents resolve; their missing types surface as
	// recorded resolution problems, not hard failures.
	if cfg.Stubs {
		for id := range missing {
			d.cache.Put(&xsdc.SchemaUnit{CanonicalID: id})
		}
	}

	var generated []*deriver.Module
	var moduleOrder []string

	for _, id := range closure {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if failed[id] {
			continue
		}

		if missing[id] {
			source, name, err := stubModule(id)
			if err == nil {
				err = d.writeModule(cfg.OutDir, cfg.OutputTemplate, name, source)
			}
			if err != nil {
				failed[id] = true
				report.Failed = append(report.Failed, xsdc.Failure{SchemaID: id, Err: err.Error()})
				continue
			}
			report.Stubbed = append(report.Stubbed, id)
			moduleOrder = append(moduleOrder, name)
			continue
		}

		module, err := d.generateOne(id, cfg)
		if err != nil {
			failed[id] = true
			report.Failed = append(report.Failed, xsdc.Failure{SchemaID: id, Err: err.Error()})
			removeModule(cfg.OutDir, cfg.OutputTemplate, identity.ModuleName(id))
			d.logger.Error("generation failed: %s: %v", id, err)
			continue
		}
		report.Generated = append(report.Generated, id)
		generated = append(generated, module)
		moduleOrder = append(moduleOrder, module.Name)
	}

	if cfg.ExtractTypes {
		d.expandPass(cfg, generated, report)
	}

	if err := d.writeBarrel(cfg, generated, moduleOrder); err != nil {
		return nil, err
	}

	return report, nil
}

// generateOne runs resolve → derive → write for one available schema.
func (d *Driver) generateOne(id string, cfg Config) (*deriver.Module, error) {
	unit := d.cache.Units()[id]

	resolved, err := resolver.Resolve(unit, d.cache.Units(), cfg.Locate)
	if err != nil {
		return nil, err
	}
	for _, p := range resolved.Problems {
		d.logger.Verbose("%s: unresolved reference %s in %s (%s)", id, p.Ref, p.Owner, p.Reason)
	}

	module, err := deriver.Derive(resolved, deriver.Options{ModulePath: cfg.ModulePath})
	if err != nil {
		return nil, err
	}

	if err := d.writeModule(cfg.OutDir, cfg.OutputTemplate, module.Name, module.Source); err != nil {
		return nil, err
	}
	return module, nil
}

// expandPass re-emits modules whose inheritance chains are deeper than the
// configured ceiling, with every chain flattened into concrete fields.
// A failed expansion keeps the unexpanded module and the run continues.
func (d *Driver) expandPass(cfg Config, generated []*deriver.Module, report *xsdc.Report) {
	for i, module := range generated {
		if module.ChainDepth <= cfg.ExpandDepth {
			continue
		}

		unit := d.cache.Units()[module.SchemaID]
		resolved, err := resolver.Resolve(unit, d.cache.Units(), cfg.Locate)
		var expanded *deriver.Module
		if err == nil {
			expanded, err = deriver.Derive(resolved, deriver.Options{
				ModulePath: cfg.ModulePath,
				FlattenAll: true,
			})
		}
		if err == nil {
			err = d.writeModule(cfg.OutDir, cfg.OutputTemplate, expanded.Name, expanded.Source)
		}
		if err != nil {
			d.logger.Error("expand failed for %s, keeping computed form: %v", module.SchemaID, err)
			continue
		}

		generated[i] = expanded
		report.Expanded = append(report.Expanded, module.SchemaID)
		d.logger.Verbose("expanded %s (chain depth %d)", module.SchemaID, module.ChainDepth)
	}
}

// writeBarrel emits the index module in stable order.
func (d *Driver) writeBarrel(cfg Config, generated []*deriver.Module, moduleOrder []string) error {
	source, err := barrelModule(cfg.Package, cfg.ModulePath, generated, moduleOrder)
	if err != nil {
		return fmt.Errorf("failed to render barrel module: %w", err)
	}

	target := filepath.Join(cfg.OutDir, xsdc.BarrelFileName)
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, source, 0644); err != nil {
		return fmt.Errorf("failed to write barrel module: %w", err)
	}
	return nil
}

// matchRoot maps a configured root spec to a scanned canonical id. The
// basename fallback scans ids in sorted order, so a name shared by several
// files always resolves to the same one.
func matchRoot(root string, files map[string]scanner.SchemaFile) (string, bool) {
	id := identity.Canonicalize(root)
	if _, ok := files[id]; ok {
		return id, true
	}

	ids := make([]string, 0, len(files))
	for canonical := range files {
		ids = append(ids, canonical)
	}
	sort.Strings(ids)

	want := strings.ToLower(strings.TrimSuffix(root, filepath.Ext(root)))
	for _, canonical := range ids {
		name := files[canonical].Name
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.ToLower(base) == want {
			return canonical, true
		}
	}
	return "", false
}

// cleanDir removes the directory's contents without removing the directory
// itself.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
	}
	return nil
}
