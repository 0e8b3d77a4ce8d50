package massprop

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a 3x3 inertia tensor about a body's center of mass.
type Tensor mgl64.Mat3

// NewTensor builds a symmetric tensor from its six independent entries.
func NewTensor(ixx, ixy, ixz, iyy, iyz, izz float64) Tensor {
	return TensorFromRows(
		mgl64.Vec3{ixx, ixy, ixz},
		mgl64.Vec3{ixy, iyy, iyz},
		mgl64.Vec3{ixz, iyz, izz},
	)
}

// TensorFromRows builds a tensor from three rows.
func TensorFromRows(r0, r1, r2 mgl64.Vec3) Tensor {
	return Tensor(mgl64.Mat3FromRows(r0, r1, r2))
}

// At returns the entry at row r, column c.
func (t Tensor) At(r, c int) float64 {
	return mgl64.Mat3(t).At(r, c)
}

func (t *Tensor) set(r, c int, v float64) {
	m := mgl64.Mat3(*t)
	m.Set(r, c, v)
	*t = Tensor(m)
}

func (t Tensor) Ixx() float64 { return t.At(0, 0) }
func (t Tensor) Ixy() float64 { return t.At(0, 1) }
func (t Tensor) Ixz() float64 { return t.At(0, 2) }
func (t Tensor) Iyy() float64 { return t.At(1, 1) }
func (t Tensor) Iyz() float64 { return t.At(1, 2) }
func (t Tensor) Izz() float64 { return t.At(2, 2) }

// Rows returns the three rows.
func (t Tensor) Rows() (r0, r1, r2 mgl64.Vec3) {
	return mgl64.Mat3(t).Rows()
}

// Transpose returns the transposed tensor.
func (t Tensor) Transpose() Tensor {
	return Tensor(mgl64.Mat3(t).Transpose())
}

// Symmetrize returns 0.5*(T+Tᵀ).
func (t Tensor) Symmetrize() Tensor {
	return Tensor(mgl64.Mat3(t).Add(mgl64.Mat3(t.Transpose())).Mul(0.5))
}

// IsSymmetric reports whether T equals its transpose exactly.
func (t Tensor) IsSymmetric() bool {
	return t == t.Transpose()
}

// Scale multiplies every entry by s.
func (t Tensor) Scale(s float64) Tensor {
	return Tensor(mgl64.Mat3(t).Mul(s))
}

// ApproxEqual compares entry-wise with an absolute tolerance.
func (t Tensor) ApproxEqual(o Tensor, tol float64) bool {
	for i := range t {
		if math.Abs(t[i]-o[i]) > tol {
			return false
		}
	}
	return true
}

// zeroBelow clears entries whose magnitude is below eps.
func (t Tensor) zeroBelow(eps float64) Tensor {
	for i := range t {
		if math.Abs(t[i]) < eps {
			t[i] = 0
		}
	}
	return t
}

func (t Tensor) String() string {
	return fmt.Sprintf("[[%g %g %g] [%g %g %g] [%g %g %g]]",
		t.At(0, 0), t.At(0, 1), t.At(0, 2),
		t.At(1, 0), t.At(1, 1), t.At(1, 2),
		t.At(2, 0), t.At(2, 1), t.At(2, 2))
}

// Principal returns the principal moments in ascending order and the
// matching unit axes.
func (t Tensor) Principal() (moments mgl64.Vec3, axes [3]mgl64.Vec3, err error) {
	s := t.Symmetrize()
	sym := mat.NewSymDense(3, []float64{
		s.At(0, 0), s.At(0, 1), s.At(0, 2),
		s.At(1, 0), s.At(1, 1), s.At(1, 2),
		s.At(2, 0), s.At(2, 1), s.At(2, 2),
	})
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return moments, axes, fmt.Errorf("massprop: eigen decomposition failed for %v", t)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	for i := 0; i < 3; i++ {
		moments[i] = vals[i]
		axes[i] = mgl64.Vec3{vecs.At(0, i), vecs.At(1, i), vecs.At(2, i)}
	}
	return moments, axes, nil
}

// TriangleInequality reports whether the principal moments describe a
// physically realizable body: each moment is at most the sum of the other
// two, within tol.
func (t Tensor) TriangleInequality(tol float64) bool {
	m, _, err := t.Principal()
	if err != nil {
		return false
	}
	return m[0]+m[1] >= m[2]-tol && m[0]+m[2] >= m[1]-tol && m[1]+m[2] >= m[0]-tol
}
