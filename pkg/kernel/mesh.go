package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float64 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which link this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Cells returns one cell per index triple. A trailing partial triple and
// triples referencing vertices that do not exist come back as short cells
// holding only the vertices that could be resolved.
func (m *Mesh) Cells() []Cell {
	n := m.VertexCount()
	cells := make([]Cell, 0, (len(m.Indices)+2)/3)
	for i := 0; i < len(m.Indices); i += 3 {
		end := min(i+3, len(m.Indices))
		c := make(Cell, 0, 3)
		for _, idx := range m.Indices[i:end] {
			if int(idx) < n {
				c = append(c, m.Vertex(int(idx)))
			}
		}
		cells = append(cells, c)
	}
	return cells
}

// Triangles flattens the mesh into explicit triangles, dropping any cell
// that is not a triangle.
func (m *Mesh) Triangles() Triangles {
	cells := m.Cells()
	out := make(Triangles, 0, len(cells))
	for _, c := range cells {
		if t, ok := c.Triangle(); ok {
			out = append(out, t)
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if m.VertexCount() == 0 {
		return lo, hi
	}
	lo = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], v[a])
			hi[a] = math.Max(hi[a], v[a])
		}
	}
	return lo, hi
}

// Translated returns a copy of m with every vertex moved by d.
func (m *Mesh) Translated(d mgl64.Vec3) *Mesh {
	out := &Mesh{
		Vertices: make([]float64, len(m.Vertices)),
		Normals:  append([]float64(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: m.PartName,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v + d[i%3]
	}
	return out
}

// FromTriangles builds an unshared-vertex mesh with flat face normals.
func FromTriangles(name string, tris []Triangle) *Mesh {
	m := &Mesh{
		Vertices: make([]float64, 0, len(tris)*9),
		Normals:  make([]float64, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
		PartName: name,
	}
	for i, t := range tris {
		n := t.Normal()
		for j := 0; j < 3; j++ {
			m.Vertices = append(m.Vertices, t[j][0], t[j][1], t[j][2])
			m.Normals = append(m.Normals, n[0], n[1], n[2])
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m
}

var _ Source = (*Mesh)(nil)
