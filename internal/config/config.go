package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skaldic/xsdc/pkg/xsdc"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound)
// and fall back to flag and environment defaults.
var ErrConfigNotFound = errors.New("config file not found")

// GenerateConfig holds the generation section of xsdc.yaml.
type GenerateConfig struct {
	Out            string   `yaml:"out"`
	Roots          []string `yaml:"roots"`
	Package        string   `yaml:"package"`
	ModulePath     string   `yaml:"module_path"`
	Stubs          bool     `yaml:"stubs"`
	ExtractTypes   bool     `yaml:"extract_types"`
	ExpandDepth    int      `yaml:"expand_depth"`
	OutputTemplate string   `yaml:"output_template"`
}

// ProjectConfig is the full xsdc.yaml document.
type ProjectConfig struct {
	Generate GenerateConfig `yaml:"generate"`
	Verbose  bool           `yaml:"verbose"`
}

// Load reads xsdc.yaml from the given source directory and applies XSDC_
// environment overrides on top. Environment variables win over file values
// so CI runs can redirect output without editing the project file.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, xsdc.ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", xsdc.ErrInvalidConfig, configPath, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays XSDC_ variables onto the loaded config.
func applyEnv(cfg *ProjectConfig) error {
	if v := os.Getenv("XSDC_OUT"); v != "" {
		cfg.Generate.Out = v
	}
	if v := os.Getenv("XSDC_ROOTS"); v != "" {
		cfg.Generate.Roots = splitList(v)
	}
	if v := os.Getenv("XSDC_PACKAGE"); v != "" {
		cfg.Generate.Package = v
	}
	if v := os.Getenv("XSDC_MODULE_PATH"); v != "" {
		cfg.Generate.ModulePath = v
	}
	if v := os.Getenv("XSDC_STUBS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: XSDC_STUBS: %v", xsdc.ErrInvalidConfig, err)
		}
		cfg.Generate.Stubs = b
	}
	if v := os.Getenv("XSDC_EXTRACT_TYPES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: XSDC_EXTRACT_TYPES: %v", xsdc.ErrInvalidConfig, err)
		}
		cfg.Generate.ExtractTypes = b
	}
	if v := os.Getenv("XSDC_EXPAND_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: XSDC_EXPAND_DEPTH must be a positive integer", xsdc.ErrInvalidConfig)
		}
		cfg.Generate.ExpandDepth = n
	}
	return nil
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
