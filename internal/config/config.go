// Package config loads optional querygen settings from YAML.
//
// Every field has a default, so running without a config file reproduces
// the built-in behaviour. Unknown keys are rejected to catch typos.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querygen/internal/artifact"
	"github.com/roach88/querygen/internal/assemble"
	"github.com/roach88/querygen/internal/ir"
)

// Config holds generator settings.
type Config struct {
	// Output is the artifact path.
	Output string `yaml:"output"`
	// Package is the package clause of the generated file.
	Package string `yaml:"package"`
	// EngineImport is the import path of the query engine contract.
	EngineImport string `yaml:"engine_import"`
	// Bare drops the header.
	Bare bool `yaml:"bare"`
	// Catalog optionally replaces the built-in catalog with a CUE file.
	Catalog string `yaml:"catalog,omitempty"`
	// Bounds override the supported arities.
	Bounds ir.Bounds `yaml:"bounds"`
	// Workers > 1 renders cases concurrently.
	Workers int `yaml:"workers"`
	// Ledger is an optional SQLite path recording each run.
	Ledger string `yaml:"ledger,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Output:       artifact.DefaultPath,
		Package:      assemble.DefaultPackage,
		EngineImport: assemble.DefaultEngineImport,
		Bounds:       ir.DefaultBounds,
		Workers:      1,
	}
}

var packageName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if !c.Bare && !packageName.MatchString(c.Package) {
		return fmt.Errorf("package %q is not a valid package name", c.Package)
	}
	if !c.Bare && c.EngineImport == "" {
		return fmt.Errorf("engine_import is required unless bare")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return c.Bounds.Validate()
}

// Header returns the assembler header for c.
func (c Config) Header() assemble.Header {
	return assemble.Header{Package: c.Package, EngineImport: c.EngineImport, Bare: c.Bare}
}
