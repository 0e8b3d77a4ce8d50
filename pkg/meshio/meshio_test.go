package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxMesh() *kernel.Mesh {
	return kernel.FromTriangles("box", kernel.Box(mgl64.Vec3{}, mgl64.Vec3{1, 2, 4}))
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, boxMesh()))
	assert.Equal(t, headerSize+4+12*recordSize, buf.Len())

	m, err := ReadSTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, "box", m.PartName)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, 8, m.VertexCount(), "identical corners should be shared")

	want := kernel.Box(mgl64.Vec3{}, mgl64.Vec3{1, 2, 4})
	got := m.Triangles()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i], "triangle %d", i)
	}
}

func TestBinaryHeaderStartingWithSolid(t *testing.T) {
	m := boxMesh()
	m.PartName = "solid but binary"
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, m))

	got, err := ReadSTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TriangleCount())
}

func TestReadASCII(t *testing.T) {
	src := `solid tet
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 1 0 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 0 1
    endloop
  endfacet
endsolid tet
`
	m, err := ReadSTL(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "tet", m.PartName)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, m.Vertex(1))
}

func TestReadASCIIBadCoordinate(t *testing.T) {
	_, err := ReadSTL(strings.NewReader("solid x\nvertex 0 zero 0\nendsolid x\n"))
	assert.Error(t, err)
}

func TestReadTruncatedBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, headerSize))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(5)))
	buf.Write(make([]byte, recordSize))

	_, err := ReadSTL(&buf)
	assert.True(t, errors.Is(err, ErrTruncated), "err = %v", err)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "L_arm.stl")
	require.NoError(t, Save(path, boxMesh()))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "L_arm", m.PartName)

	m, err = FileLoader{Root: dir}.Load("L_arm.stl")
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())

	_, err = FileLoader{Root: dir}.Load("missing.stl")
	assert.Error(t, err)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "L_arm", Stem("/a/b/L_arm.stl"))
	assert.Equal(t, "part", Stem("part"))
}
