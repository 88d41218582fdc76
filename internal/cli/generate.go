package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skaldic/xsdc/internal/checksum"
	"github.com/skaldic/xsdc/internal/config"
	"github.com/skaldic/xsdc/internal/driver"
	"github.com/skaldic/xsdc/internal/files/scanner"
	"github.com/skaldic/xsdc/internal/logging"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

var generateCmd = &cobra.Command{
	Use:   "generate [source_dir]",
	Short: "Generate Go modules from a schema directory",
	Long: `Generate compiles the schemas under source_dir into Go modules.

The command:
1. Scans source_dir for .xsd files
2. Discovers the include/import closure of the configured root schemas
3. Resolves each schema and derives its Go type declarations
4. Writes one module per schema plus a barrel module re-exporting all types

Configuration is layered: flags override XSDC_ environment variables,
which override xsdc.yaml in the source directory. A .env file next to
the working directory is loaded first.

Per-schema failures do not abort the run; failed schemas are reported
and the rest of the closure is still generated. The exit code is 21
when a root schema itself failed.

Examples:
  # Generate everything under ./schemas into ./gen
  xsdc generate ./schemas --root order --out ./gen

  # Multiple roots, stub missing references
  xsdc generate ./schemas --root order --root invoice --stubs

  # Full rebuild with flattened deep inheritance chains
  xsdc generate ./schemas --root order --clean --extract-types`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

type generateFlagValues struct {
	roots        []string
	out          string
	pkg          string
	modulePath   string
	stubs        bool
	clean        bool
	extractTypes bool
	expandDepth  int
}

var generateFlags generateFlagValues

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceVar(&generateFlags.roots, "root", nil,
		"Root schema to generate (can be specified multiple times)\n"+
			"Matches a schema path relative to source_dir or a bare name\n"+
			"Example: --root order --root types/common.xsd")
	generateCmd.Flags().StringVarP(&generateFlags.out, "out", "o", "",
		"Output directory for generated modules (default: ./gen)")
	generateCmd.Flags().StringVar(&generateFlags.pkg, "package", "",
		"Go package name of the barrel module (default: schemas)")
	generateCmd.Flags().StringVar(&generateFlags.modulePath, "module-path", "",
		"Go import base path for generated modules\n"+
			"Example: --module-path github.com/acme/orders/gen")
	generateCmd.Flags().BoolVar(&generateFlags.stubs, "stubs", false,
		"Emit placeholder modules for referenced but missing schemas\n"+
			"Without this flag a missing schema lands in the failed partition")
	generateCmd.Flags().BoolVar(&generateFlags.clean, "clean", false,
		"Remove the contents of the output directory before generating")
	generateCmd.Flags().BoolVar(&generateFlags.extractTypes, "extract-types", false,
		"Flatten inheritance chains deeper than the expand depth\n"+
			"into standalone struct declarations")
	generateCmd.Flags().IntVar(&generateFlags.expandDepth, "expand-depth", 0,
		fmt.Sprintf("Inheritance depth above which --extract-types flattens a module (default %d)", xsdc.DefaultExpandDepth))
}

// buildDriverConfig layers flags over environment over xsdc.yaml.
func buildDriverConfig(cmd *cobra.Command, sourceDir string) (driver.Config, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(sourceDir)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return driver.Config{}, err
		}
		projectCfg = &config.ProjectConfig{}
	}

	cfg := driver.Config{
		SourceDir:      sourceDir,
		OutDir:         projectCfg.Generate.Out,
		Roots:          projectCfg.Generate.Roots,
		Package:        projectCfg.Generate.Package,
		ModulePath:     projectCfg.Generate.ModulePath,
		Stubs:          projectCfg.Generate.Stubs,
		ExtractTypes:   projectCfg.Generate.ExtractTypes,
		ExpandDepth:    projectCfg.Generate.ExpandDepth,
		OutputTemplate: projectCfg.Generate.OutputTemplate,
	}

	if len(generateFlags.roots) > 0 {
		cfg.Roots = generateFlags.roots
	}
	if generateFlags.out != "" {
		cfg.OutDir = generateFlags.out
	}
	if generateFlags.pkg != "" {
		cfg.Package = generateFlags.pkg
	}
	if generateFlags.modulePath != "" {
		cfg.ModulePath = generateFlags.modulePath
	}
	if cmd.Flags().Changed("stubs") {
		cfg.Stubs = generateFlags.stubs
	}
	if cmd.Flags().Changed("extract-types") {
		cfg.ExtractTypes = generateFlags.extractTypes
	}
	if cmd.Flags().Changed("expand-depth") {
		cfg.ExpandDepth = generateFlags.expandDepth
	}
	cfg.Clean = generateFlags.clean

	if cfg.OutDir == "" {
		cfg.OutDir = "./gen"
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	sourceDir := "."
	if len(args) == 1 {
		sourceDir = args[0]
	}
	verbose := getVerboseFlag(cmd)

	cfg, err := buildDriverConfig(cmd, sourceDir)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	d := driver.New(
		scanner.NewScanner(checksum.New()),
		driver.NewUnitCache(),
		checksum.New(),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling generation...")
		cancel()
	}()

	report, err := d.Run(ctx, cfg)
	if err != nil {
		return err
	}

	printReport(report, cfg.OutDir)

	if report.RootFailed(report.Roots) {
		return fmt.Errorf("%w: see failures above", xsdc.ErrRootFailed)
	}
	return nil
}

// printReport writes the run summary to stdout, styled when attached to a
// terminal.
func printReport(report *xsdc.Report, outDir string) {
	color := useColor()

	fmt.Println(render(boldStyle, "Generation summary", color))
	fmt.Printf("  %s %d module(s) written to %s\n",
		render(successStyle, "generated:", color), len(report.Generated), outDir)
	if len(report.Stubbed) > 0 {
		fmt.Printf("  %s %d placeholder module(s)\n",
			render(warningStyle, "stubbed:  ", color), len(report.Stubbed))
		for _, id := range report.Stubbed {
			fmt.Printf("    %s\n", render(mutedStyle, id, color))
		}
	}
	if len(report.Expanded) > 0 {
		fmt.Printf("  %s %d module(s) flattened\n",
			render(mutedStyle, "expanded: ", color), len(report.Expanded))
	}
	if len(report.Failed) > 0 {
		fmt.Printf("  %s %d schema(s)\n",
			render(errorStyle, "failed:   ", color), len(report.Failed))
		for _, f := range report.Failed {
			fmt.Printf("    %s: %s\n", render(errorStyle, f.SchemaID, color), f.Err)
		}
	}
}
