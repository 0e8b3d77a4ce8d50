// Package massprop computes rigid-body mass properties of closed triangle
// surfaces: enclosed volume, center of mass and the inertia tensor about
// that center, using exact per-triangle tetrahedron decomposition.
//
// An Engine holds only immutable configuration and is safe for concurrent
// use. Geometry anomalies never abort a computation; they are skipped and
// reported as Diagnostics alongside the result.
package massprop

import (
	"math"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// CentroidMode selects how CenterOfMass derives a center when no override
// is given.
type CentroidMode int

const (
	// CentroidVolume is the exact volume-weighted centroid of the solid.
	CentroidVolume CentroidMode = iota
	// CentroidVertex is the mean of the distinct surface vertices.
	CentroidVertex
)

// ParseCentroidMode maps "volume" and "vertex" to a mode.
func ParseCentroidMode(s string) (CentroidMode, bool) {
	switch s {
	case "", "volume":
		return CentroidVolume, true
	case "vertex":
		return CentroidVertex, true
	}
	return CentroidVolume, false
}

func (m CentroidMode) String() string {
	if m == CentroidVertex {
		return "vertex"
	}
	return "volume"
}

const (
	DefaultDegenerateArea = 1e-12
	DefaultZeroThreshold  = 1e-10
)

// Config holds engine tunables.
type Config struct {
	DegenerateArea float64 // triangles below this area are skipped
	ZeroThreshold  float64 // tensor entries below this magnitude become 0
	Workers        int     // >1 reduces triangles in parallel chunks
	Centroid       CentroidMode
	Logger         *zap.Logger
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		DegenerateArea: DefaultDegenerateArea,
		ZeroThreshold:  DefaultZeroThreshold,
		Workers:        1,
		Centroid:       CentroidVolume,
	}
}

// Engine computes mass properties.
type Engine struct {
	cfg Config
	log *zap.Logger
}

// New returns an engine. Zero-valued fields of cfg take their defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.DegenerateArea <= 0 {
		cfg.DegenerateArea = def.DegenerateArea
	}
	if cfg.ZeroThreshold <= 0 {
		cfg.ZeroThreshold = def.ZeroThreshold
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log.Named("massprop")}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Input carries the physical values known for a part. Mass wins over
// Density when both are set.
type Input struct {
	Density      *float64
	Mass         *float64
	CenterOfMass *mgl64.Vec3
}

// Properties is a complete set of mass properties.
type Properties struct {
	SignedVolume float64
	Volume       float64
	Density      float64
	Mass         float64
	CenterOfMass mgl64.Vec3
	Inertia      Tensor
	Diagnostics  Diagnostics
}

// Compute derives volume, center of mass, density/mass and finally the
// inertia tensor in one call.
func (e *Engine) Compute(src kernel.Source, in Input) Properties {
	var p Properties
	var diags Diagnostics

	p.SignedVolume, diags = e.Volume(src)
	p.Volume = math.Abs(p.SignedVolume)

	switch {
	case in.Mass != nil:
		p.Mass = *in.Mass
		if p.Volume > 0 {
			p.Density = p.Mass / p.Volume
		} else {
			diags = diags.Merge(Diagnostics{valueDiag(KindZeroVolume, SeverityWarning, p.Mass)})
		}
	case in.Density != nil:
		p.Density = *in.Density
		p.Mass = p.Density * p.Volume
	default:
		diags = diags.Merge(Diagnostics{valueDiag(KindMissingInput, SeverityWarning, 0)})
	}

	com, cd := e.CenterOfMass(src, in.CenterOfMass)
	p.CenterOfMass = com
	diags = diags.Merge(cd)

	if p.Density != 0 {
		tensor, td := e.InertiaTensor(src, p.Density, com)
		p.Inertia = tensor
		diags = diags.Merge(td)
	}
	p.Diagnostics = diags

	e.log.Debug("computed mass properties",
		zap.Float64("volume", p.SignedVolume),
		zap.Float64("mass", p.Mass),
		zap.Float64("density", p.Density),
		zap.Int("diagnostics", len(diags)))
	return p
}

// prepare validates the cells of src and returns the usable triangles
// with their source indices.
func (e *Engine) prepare(src kernel.Source) ([]kernel.Triangle, []int, Diagnostics) {
	cells := src.Cells()
	var diags Diagnostics
	if len(cells) == 0 {
		return nil, nil, Diagnostics{cellDiag(KindEmptyMesh, SeverityInfo, -1)}
	}
	tris := make([]kernel.Triangle, 0, len(cells))
	idx := make([]int, 0, len(cells))
	for i, c := range cells {
		t, ok := c.Triangle()
		if !ok {
			d := cellDiag(KindNonTriangle, SeverityWarning, i)
			d.Value = float64(len(c))
			diags = append(diags, d)
			continue
		}
		if !t.Finite() {
			diags = append(diags, cellDiag(KindNonFinite, SeverityWarning, i))
			continue
		}
		if a := t.Area(); a < e.cfg.DegenerateArea {
			d := cellDiag(KindDegenerate, SeverityInfo, i)
			d.Value = a
			diags = append(diags, d)
			continue
		}
		tris = append(tris, t)
		idx = append(idx, i)
	}
	return tris, idx, diags
}
