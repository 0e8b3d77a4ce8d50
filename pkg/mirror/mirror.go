package mirror

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrZeroVolume is returned when the mirrored surface encloses no volume,
// so no density can be derived from the authored mass.
var ErrZeroVolume = errors.New("mirror: mirrored geometry has zero volume")

// Cells reflects every triangle of src across plane and reverses its vertex
// order so the reflected surface keeps outward normals. Cells that are not
// triangles are dropped.
func Cells(src kernel.Source, plane Plane) kernel.Triangles {
	cells := src.Cells()
	out := make(kernel.Triangles, 0, len(cells))
	for _, c := range cells {
		t, ok := c.Triangle()
		if !ok {
			continue
		}
		out = append(out, kernel.Triangle{
			plane.Reflect(t[2]),
			plane.Reflect(t[1]),
			plane.Reflect(t[0]),
		})
	}
	return out
}

// Mesh returns the mirrored copy of m: vertices and normals reflected,
// index order of each triangle reversed so that the winding again agrees
// with the reflected outward normals. m is not modified.
func Mesh(m *kernel.Mesh, plane Plane) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float64, len(m.Vertices)),
		Normals:  make([]float64, len(m.Normals)),
		Indices:  make([]uint32, len(m.Indices)),
		PartName: m.PartName,
	}
	axis := plane.Axis()
	copy(out.Vertices, m.Vertices)
	copy(out.Normals, m.Normals)
	for i := axis; i < len(out.Vertices); i += 3 {
		out.Vertices[i] = -out.Vertices[i]
	}
	for i := axis; i < len(out.Normals); i += 3 {
		out.Normals[i] = -out.Normals[i]
	}
	full := len(m.Indices) - len(m.Indices)%3
	for i := 0; i < full; i += 3 {
		out.Indices[i] = m.Indices[i+2]
		out.Indices[i+1] = m.Indices[i+1]
		out.Indices[i+2] = m.Indices[i]
	}
	copy(out.Indices[full:], m.Indices[full:])
	return out
}

// CenterOfMass reflects an authored center of mass.
func CenterOfMass(com mgl64.Vec3, plane Plane) mgl64.Vec3 {
	return plane.Reflect(com)
}

// Authored holds the values a user entered for the original part.
type Authored struct {
	Mass         float64
	CenterOfMass mgl64.Vec3
}

// Result is the mirrored part's geometry and mass properties.
type Result struct {
	Surface    kernel.Triangles
	Properties massprop.Properties
}

// Mirrorer mirrors parts with a fixed engine.
type Mirrorer struct {
	engine *massprop.Engine
}

// New returns a Mirrorer that recomputes inertia with engine.
func New(engine *massprop.Engine) *Mirrorer {
	return &Mirrorer{engine: engine}
}

// Properties reflects src, derives density from the authored mass and the
// mirrored volume, reflects the authored center of mass, and recomputes the
// inertia tensor from the reflected geometry.
func (m *Mirrorer) Properties(src kernel.Source, plane Plane, a Authored) (Result, error) {
	surface := Cells(src, plane)

	signed, diags := m.engine.Volume(surface)
	volume := math.Abs(signed)
	if volume == 0 {
		return Result{}, fmt.Errorf("%w (mass %g)", ErrZeroVolume, a.Mass)
	}
	density := a.Mass / volume
	com := CenterOfMass(a.CenterOfMass, plane)

	tensor, td := m.engine.InertiaTensor(surface, density, com)
	return Result{
		Surface: surface,
		Properties: massprop.Properties{
			SignedVolume: signed,
			Volume:       volume,
			Density:      density,
			Mass:         a.Mass,
			CenterOfMass: com,
			Inertia:      tensor,
			Diagnostics:  diags.Merge(td),
		},
	}, nil
}

// Name returns the file stem of the mirrored counterpart: a leading L_ or
// l_ becomes R_ or r_ and vice versa, anything else gains a mirrored_
// prefix.
func Name(stem string) string {
	swaps := [][2]string{{"L_", "R_"}, {"R_", "L_"}, {"l_", "r_"}, {"r_", "l_"}}
	for _, s := range swaps {
		if rest, ok := strings.CutPrefix(stem, s[0]); ok {
			return s[1] + rest
		}
	}
	return "mirrored_" + stem
}
