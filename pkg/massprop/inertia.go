package massprop

import (
	"math"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// covariance is the second-moment integral ∫ x_a x_b dV at unit density.
type covariance [3][3]float64

func (c covariance) add(o covariance) covariance {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			c[a][b] += o[a][b]
		}
	}
	return c
}

// accumulate adds the tetrahedron (origin, p0, p1, p2) to c:
// C[a][b] += det/120 · Σ_{j,k} (1+δjk) p_j[a] p_k[b].
func (c *covariance) accumulate(t kernel.Triangle) {
	det := t[0].Dot(t[1].Cross(t[2]))
	sum := t[0].Add(t[1]).Add(t[2])
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			s := sum[a] * sum[b]
			for j := 0; j < 3; j++ {
				s += t[j][a] * t[j][b]
			}
			c[a][b] += det / 120 * s
		}
	}
}

// tensor converts the covariance to an inertia tensor at unit density.
func (c covariance) tensor() Tensor {
	return TensorFromRows(
		mgl64.Vec3{c[1][1] + c[2][2], -c[0][1], -c[0][2]},
		mgl64.Vec3{-c[1][0], c[0][0] + c[2][2], -c[1][2]},
		mgl64.Vec3{-c[2][0], -c[2][1], c[0][0] + c[1][1]},
	)
}

// InertiaTensor returns the inertia tensor of src about com at the given
// density. The result is symmetric, entries below the zero threshold are
// cleared, and a non-positive diagonal entry is replaced by its magnitude
// with a warning diagnostic naming the axis.
func (e *Engine) InertiaTensor(src kernel.Source, density float64, com mgl64.Vec3) (Tensor, Diagnostics) {
	tris, _, diags := e.prepare(src)
	if len(tris) == 0 {
		return Tensor{}, diags
	}

	parts := reduce(e.cfg.Workers, len(tris), func(lo, hi int) covariance {
		var c covariance
		for _, t := range tris[lo:hi] {
			c.accumulate(t.Translate(com))
		}
		return c
	})
	var cov covariance
	for _, p := range parts {
		cov = cov.add(p)
	}

	t := cov.tensor().Scale(density).zeroBelow(e.cfg.ZeroThreshold).Symmetrize()
	for axis := 0; axis < 3; axis++ {
		if v := t.At(axis, axis); v <= 0 {
			diags = append(diags, axisDiag(KindNonPositiveDiagonal, SeverityWarning, axis, v))
			t.set(axis, axis, math.Abs(v))
		}
	}
	return t, diags.Merge(checkRealizable(t, e.cfg.ZeroThreshold))
}

// checkRealizable warns when the principal moments of t violate the
// triangle inequality, which a closed, consistently wound mesh cannot
// produce. The tolerance scales with the trace.
func checkRealizable(t Tensor, eps float64) Diagnostics {
	trace := t.Ixx() + t.Iyy() + t.Izz()
	tol := math.Max(eps, 1e-9*math.Abs(trace))
	if t.TriangleInequality(tol) {
		return nil
	}
	m, _, _ := t.Principal()
	return Diagnostics{valueDiag(KindNonPhysicalInertia, SeverityWarning, m[2]-m[0]-m[1])}
}
