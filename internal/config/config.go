// Package config handles urdfkit configuration loading and management.
package config

import (
	"fmt"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Config holds all settings.
type Config struct {
	Engine   EngineConfig   `yaml:"engine" toml:"engine"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Material MaterialConfig `yaml:"material" toml:"material"`
	Kernel   KernelConfig   `yaml:"kernel" toml:"kernel"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// EngineConfig holds mass-property engine settings.
type EngineConfig struct {
	DegenerateArea float64 `yaml:"degenerate_area" toml:"degenerate_area"`
	ZeroThreshold  float64 `yaml:"zero_threshold" toml:"zero_threshold"`
	Workers        int     `yaml:"workers" toml:"workers"`
	Centroid       string  `yaml:"centroid" toml:"centroid"` // volume | vertex
}

// ExportConfig holds output formatting settings.
type ExportConfig struct {
	ScalarDigits int        `yaml:"scalar_digits" toml:"scalar_digits"`
	MirrorPlane  string     `yaml:"mirror_plane" toml:"mirror_plane"`
	DefaultColor [3]float64 `yaml:"default_color" toml:"default_color"`
	MeshDir      string     `yaml:"mesh_dir" toml:"mesh_dir"`
}

// MaterialConfig holds material fallbacks.
type MaterialConfig struct {
	// DefaultDensity applies to parts that pin neither mass nor density.
	// Zero disables the fallback.
	DefaultDensity float64 `yaml:"default_density" toml:"default_density"`
}

// KernelConfig holds solid-modelling settings.
type KernelConfig struct {
	MeshCells int `yaml:"mesh_cells" toml:"mesh_cells"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			DegenerateArea: massprop.DefaultDegenerateArea,
			ZeroThreshold:  massprop.DefaultZeroThreshold,
			Workers:        1,
			Centroid:       "volume",
		},
		Export: ExportConfig{
			ScalarDigits: urdf.DefaultDigits,
			MirrorPlane:  "xz",
			DefaultColor: [3]float64{1, 1, 1},
			MeshDir:      "meshes",
		},
		Material: MaterialConfig{
			DefaultDensity: 0,
		},
		Kernel: KernelConfig{
			MeshCells: 100,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	if _, ok := massprop.ParseCentroidMode(c.Engine.Centroid); !ok {
		return fmt.Errorf("config: engine.centroid %q: want volume or vertex", c.Engine.Centroid)
	}
	if _, err := mirror.ParsePlane(c.Export.MirrorPlane); err != nil {
		return fmt.Errorf("config: export.mirror_plane: %w", err)
	}
	if c.Export.ScalarDigits < 1 || c.Export.ScalarDigits > 17 {
		return fmt.Errorf("config: export.scalar_digits %d out of range 1..17", c.Export.ScalarDigits)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("config: engine.workers must be at least 1")
	}
	if c.Material.DefaultDensity < 0 {
		return fmt.Errorf("config: material.default_density must not be negative")
	}
	return nil
}

// MassProp converts the engine section for massprop.New.
func (c *Config) MassProp(log *zap.Logger) massprop.Config {
	mode, _ := massprop.ParseCentroidMode(c.Engine.Centroid)
	return massprop.Config{
		DegenerateArea: c.Engine.DegenerateArea,
		ZeroThreshold:  c.Engine.ZeroThreshold,
		Workers:        c.Engine.Workers,
		Centroid:       mode,
		Logger:         log,
	}
}

// Formatter returns the scalar formatter for exports.
func (c *Config) Formatter() urdf.Formatter {
	return urdf.Formatter{Digits: c.Export.ScalarDigits}
}

// Plane returns the configured mirror plane.
func (c *Config) Plane() mirror.Plane {
	p, _ := mirror.ParsePlane(c.Export.MirrorPlane)
	return p
}

// Color returns the default part color.
func (c *Config) Color() mgl64.Vec3 {
	return mgl64.Vec3(c.Export.DefaultColor)
}
