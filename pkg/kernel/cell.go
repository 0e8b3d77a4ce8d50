package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Source is anything that can enumerate a closed, consistently wound
// surface as cells. Closure and winding are assumed, not verified.
type Source interface {
	Cells() []Cell
}

// Cell is an ordered vertex loop. Well-formed cells have exactly three
// vertices.
type Cell []mgl64.Vec3

// Triangle returns the cell as a Triangle when it has exactly three vertices.
func (c Cell) Triangle() (Triangle, bool) {
	if len(c) != 3 {
		return Triangle{}, false
	}
	return Triangle{c[0], c[1], c[2]}, true
}

// Triangle is three vertices whose order gives the outward normal by the
// right-hand rule.
type Triangle [3]mgl64.Vec3

// Cross returns (p1-p0) x (p2-p0), twice the area-weighted normal.
func (t Triangle) Cross() mgl64.Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * t.Cross().Len()
}

// Normal returns the unit normal, or zero for a degenerate triangle.
func (t Triangle) Normal() mgl64.Vec3 {
	c := t.Cross()
	l := c.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return c.Mul(1 / l)
}

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3.0)
}

// Finite reports whether every coordinate is a finite number.
func (t Triangle) Finite() bool {
	for _, p := range t {
		for _, x := range p {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

// Translate returns the triangle shifted by -origin.
func (t Triangle) Translate(origin mgl64.Vec3) Triangle {
	return Triangle{t[0].Sub(origin), t[1].Sub(origin), t[2].Sub(origin)}
}

// Reversed returns the triangle with its winding flipped.
func (t Triangle) Reversed() Triangle {
	return Triangle{t[2], t[1], t[0]}
}

// Triangles is a triangle soup.
type Triangles []Triangle

// Cells implements Source.
func (ts Triangles) Cells() []Cell {
	cells := make([]Cell, len(ts))
	for i, t := range ts {
		cells[i] = Cell{t[0], t[1], t[2]}
	}
	return cells
}

// Box returns the 12 outward-wound triangles of an axis-aligned box
// centered on center with the given edge lengths.
func Box(center, size mgl64.Vec3) Triangles {
	h := size.Mul(0.5)
	v := func(sx, sy, sz float64) mgl64.Vec3 {
		return mgl64.Vec3{center[0] + sx*h[0], center[1] + sy*h[1], center[2] + sz*h[2]}
	}
	p := [8]mgl64.Vec3{
		v(-1, -1, -1), v(1, -1, -1), v(1, 1, -1), v(-1, 1, -1),
		v(-1, -1, 1), v(1, -1, 1), v(1, 1, 1), v(-1, 1, 1),
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // -z
		{4, 5, 6, 7}, // +z
		{0, 1, 5, 4}, // -y
		{2, 3, 7, 6}, // +y
		{0, 4, 7, 3}, // -x
		{1, 2, 6, 5}, // +x
	}
	out := make(Triangles, 0, 12)
	for _, q := range quads {
		out = append(out,
			Triangle{p[q[0]], p[q[1]], p[q[2]]},
			Triangle{p[q[0]], p[q[2]], p[q[3]]},
		)
	}
	return out
}

var _ Source = Triangles(nil)
