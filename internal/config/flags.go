package config

import "flag"

// Flags are the global command-line overrides. Zero values leave the
// loaded configuration alone.
type Flags struct {
	Config   string
	Debug    bool
	LogFile  string
	Workers  int
	Digits   int
	Plane    string
	Centroid string
	Density  float64
}

// RegisterFlags defines the global flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this rotating file")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel workers for mass-property reduction")
	fs.IntVar(&f.Digits, "digits", 0, "Significant digits for exported scalars")
	fs.StringVar(&f.Plane, "plane", "", "Mirror plane: xz, yz or xy")
	fs.StringVar(&f.Centroid, "centroid", "", "Center of mass mode: volume or vertex")
	fs.Float64Var(&f.Density, "default-density", 0, "Density for parts with neither mass nor density")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Workers > 0 {
		cfg.Engine.Workers = f.Workers
	}
	if f.Digits > 0 {
		cfg.Export.ScalarDigits = f.Digits
	}
	if f.Plane != "" {
		cfg.Export.MirrorPlane = f.Plane
	}
	if f.Centroid != "" {
		cfg.Engine.Centroid = f.Centroid
	}
	if f.Density > 0 {
		cfg.Material.DefaultDensity = f.Density
	}
}
