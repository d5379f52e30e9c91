// Package config loads Tenon settings from a YAML file. All fields
// have working defaults, so a missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tunable settings.
type Config struct {
	Kernel KernelConfig `yaml:"kernel"`
	Eval   EvalConfig   `yaml:"eval"`
	Export ExportConfig `yaml:"export"`
}

// KernelConfig tunes geometry discretization.
type KernelConfig struct {
	// MeshCells is the marching cubes grid resolution used when
	// re-meshing boolean results.
	MeshCells int `yaml:"mesh_cells"`
	// Segments is the radial segment count for cylinders.
	Segments int `yaml:"segments"`
}

// EvalConfig tunes script evaluation.
type EvalConfig struct {
	// TimeoutSeconds caps a single evaluation.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ExportConfig tunes mesh export.
type ExportConfig struct {
	// DefaultFormat is used when no format flag is given.
	DefaultFormat string `yaml:"default_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Kernel: KernelConfig{
			MeshCells: 200,
			Segments:  32,
		},
		Eval: EvalConfig{
			TimeoutSeconds: 5,
		},
		Export: ExportConfig{
			DefaultFormat: "stl",
		},
	}
}

// Load reads a YAML config file, layering it over the defaults. A
// missing file returns the defaults without error; a malformed file is
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Kernel.MeshCells < 8 {
		cfg.Kernel.MeshCells = 8
	}
	if cfg.Kernel.Segments < 3 {
		cfg.Kernel.Segments = 3
	}
	if cfg.Eval.TimeoutSeconds < 1 {
		cfg.Eval.TimeoutSeconds = 1
	}
	return cfg, nil
}

// EvalTimeout returns the evaluation timeout as a duration.
func (c Config) EvalTimeout() time.Duration {
	return time.Duration(c.Eval.TimeoutSeconds) * time.Second
}
