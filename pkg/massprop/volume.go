package massprop

import (
	"math"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// volumeSums accumulates the divergence-theorem integrals over a range of
// triangles. det is six times the signed tetrahedron volume against the
// origin.
type volumeSums struct {
	det      float64
	weighted mgl64.Vec3 // Σ det·(p0+p1+p2)
	area     float64
	areaCom  mgl64.Vec3 // Σ area·centroid
}

func (s volumeSums) add(o volumeSums) volumeSums {
	return volumeSums{
		det:      s.det + o.det,
		weighted: s.weighted.Add(o.weighted),
		area:     s.area + o.area,
		areaCom:  s.areaCom.Add(o.areaCom),
	}
}

func (e *Engine) volumeSums(tris []kernel.Triangle) volumeSums {
	parts := reduce(e.cfg.Workers, len(tris), func(lo, hi int) volumeSums {
		var s volumeSums
		for _, t := range tris[lo:hi] {
			det := t[0].Dot(t[1].Cross(t[2]))
			s.det += det
			s.weighted = s.weighted.Add(t[0].Add(t[1]).Add(t[2]).Mul(det))
			a := t.Area()
			s.area += a
			s.areaCom = s.areaCom.Add(t.Centroid().Mul(a))
		}
		return s
	})
	var total volumeSums
	for _, p := range parts {
		total = total.add(p)
	}
	return total
}

// Volume returns the signed enclosed volume Σ p0·(p1×p2)/6. A negative
// value means the surface is wound inward and is reported as such.
func (e *Engine) Volume(src kernel.Source) (float64, Diagnostics) {
	tris, _, diags := e.prepare(src)
	if len(tris) == 0 {
		return 0, diags
	}
	v := e.volumeSums(tris).det / 6
	if v < 0 {
		diags = append(diags, valueDiag(KindInvertedWinding, SeverityWarning, v))
	}
	return v, diags
}

// CenterOfMass returns override verbatim when it is non-nil. Otherwise it
// derives the center from the surface according to the configured mode,
// falling back to the area-weighted triangle centroid for a surface that
// encloses no volume, then to the vertex mean.
func (e *Engine) CenterOfMass(src kernel.Source, override *mgl64.Vec3) (mgl64.Vec3, Diagnostics) {
	if override != nil {
		return *override, nil
	}
	tris, _, diags := e.prepare(src)
	if len(tris) == 0 {
		return vertexMean(src.Cells()), diags
	}
	if e.cfg.Centroid == CentroidVertex {
		return vertexMean(src.Cells()), diags
	}

	s := e.volumeSums(tris)
	if math.Abs(s.det) > volumeFloor(tris) {
		// Each tetrahedron centroid is (p0+p1+p2+origin)/4.
		return s.weighted.Mul(1 / (4 * s.det)), diags
	}
	diags = append(diags, valueDiag(KindZeroVolume, SeverityWarning, s.det/6))
	if s.area > 0 {
		return s.areaCom.Mul(1 / s.area), diags
	}
	return vertexMean(src.Cells()), diags
}

// volumeFloor is the |6V| below which a surface is treated as enclosing
// nothing, scaled by the cube of its extent.
func volumeFloor(tris []kernel.Triangle) float64 {
	lo, hi := tris[0][0], tris[0][0]
	for _, t := range tris {
		for _, p := range t {
			for a := 0; a < 3; a++ {
				lo[a] = math.Min(lo[a], p[a])
				hi[a] = math.Max(hi[a], p[a])
			}
		}
	}
	ext := hi.Sub(lo)
	l := math.Max(ext[0], math.Max(ext[1], ext[2]))
	return 1e-12 * l * l * l
}

// vertexMean averages the distinct finite vertices in first-seen order.
func vertexMean(cells []kernel.Cell) mgl64.Vec3 {
	seen := make(map[mgl64.Vec3]bool)
	var sum mgl64.Vec3
	n := 0
	for _, c := range cells {
		for _, p := range c {
			if seen[p] || !finite(p) {
				continue
			}
			seen[p] = true
			sum = sum.Add(p)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec3{}
	}
	return sum.Mul(1 / float64(n))
}

func finite(p mgl64.Vec3) bool {
	for _, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
