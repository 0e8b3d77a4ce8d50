package part

import (
	"path/filepath"
	"testing"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePointedBox(t *testing.T, e *massprop.Engine, dir string, points []urdf.NamedPoint) string {
	t.Helper()
	stl := writeBox(t, dir, "link", mgl64.Vec3{0.1, 0.1, 0.1})
	_, _, err := File(e, stl, FileOptions{
		Pinned:    reconcile.Inputs{Mass: reconcile.Ptr(2)},
		Axis:      &mgl64.Vec3{0, 1, 0},
		Points:    points,
		Formatter: urdf.DefaultFormatter,
	})
	require.NoError(t, err)
	return stl
}

func assertVec3(t *testing.T, want, got mgl64.Vec3, tol float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "component %d", i)
	}
}

func TestReoriginNamedPoint(t *testing.T) {
	dir := t.TempDir()
	e := massprop.New(massprop.DefaultConfig())
	stl := writePointedBox(t, e, dir, []urdf.NamedPoint{
		{Name: "point1", XYZ: mgl64.Vec3{0.05, 0, 0}},
		{Name: "point2", XYZ: mgl64.Vec3{0, 0, 0.05}},
	})

	out, res, err := Reorigin(e, stl, ReoriginOptions{Point: "point2", Formatter: urdf.DefaultFormatter})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "link_origin.stl"), out)
	assert.InDelta(t, 2.0, res.Properties.Mass, 1e-9)

	mesh, err := meshio.Load(out)
	require.NoError(t, err)
	lo, hi := mesh.Bounds()
	assertVec3(t, mgl64.Vec3{-0.05, -0.05, -0.1}, lo, 1e-6)
	assertVec3(t, mgl64.Vec3{0.05, 0.05, 0}, hi, 1e-6)

	v := readValues(t, DocPath(out))
	assert.Equal(t, "link_origin", v.Name)
	require.NotNil(t, v.Mass)
	assert.InDelta(t, 2.0, *v.Mass, 1e-9)
	require.NotNil(t, v.CenterOfMass)
	assertVec3(t, mgl64.Vec3{0, 0, -0.05}, *v.CenterOfMass, 1e-6)
	require.Len(t, v.Points, 2)
	assert.Equal(t, "point1", v.Points[0].Name)
	assertVec3(t, mgl64.Vec3{0.05, 0, -0.05}, v.Points[0].XYZ, 1e-9)
	assertVec3(t, mgl64.Vec3{}, v.Points[1].XYZ, 1e-9)
	require.NotNil(t, v.Axis)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, *v.Axis)

	// Translation leaves the inertia about the center of mass unchanged.
	src := readValues(t, DocPath(stl))
	require.NotNil(t, src.Inertia)
	require.NotNil(t, v.Inertia)
	assert.True(t, src.Inertia.ApproxEqual(*v.Inertia, 1e-6))
}

func TestReoriginDefaultsToFirstPoint(t *testing.T) {
	dir := t.TempDir()
	e := massprop.New(massprop.DefaultConfig())
	stl := writePointedBox(t, e, dir, []urdf.NamedPoint{
		{Name: "point1", XYZ: mgl64.Vec3{0.05, 0, 0}},
		{Name: "point2", XYZ: mgl64.Vec3{0, 0, 0.05}},
	})
	out := filepath.Join(dir, "moved.stl")

	got, _, err := Reorigin(e, stl, ReoriginOptions{Output: out, Formatter: urdf.DefaultFormatter})
	require.NoError(t, err)
	assert.Equal(t, out, got)

	v := readValues(t, filepath.Join(dir, "moved.xml"))
	require.Len(t, v.Points, 2)
	assertVec3(t, mgl64.Vec3{}, v.Points[0].XYZ, 1e-9)
	assertVec3(t, mgl64.Vec3{-0.05, 0, 0.05}, v.Points[1].XYZ, 1e-9)
}

func TestReoriginMissingPoint(t *testing.T) {
	dir := t.TempDir()
	e := massprop.New(massprop.DefaultConfig())

	bare := writePointedBox(t, e, dir, nil)
	_, _, err := Reorigin(e, bare, ReoriginOptions{Formatter: urdf.DefaultFormatter})
	assert.ErrorIs(t, err, ErrNoPoint)

	stl := writePointedBox(t, e, dir, []urdf.NamedPoint{{Name: "point1", XYZ: mgl64.Vec3{}}})
	_, _, err = Reorigin(e, stl, ReoriginOptions{Point: "elbow", Formatter: urdf.DefaultFormatter})
	assert.ErrorIs(t, err, ErrNoPoint)
}

func TestReoriginRequiresDocument(t *testing.T) {
	dir := t.TempDir()
	stl := writeBox(t, dir, "lonely", mgl64.Vec3{1, 1, 1})
	_, _, err := Reorigin(massprop.New(massprop.DefaultConfig()), stl, ReoriginOptions{})
	assert.Error(t, err)
}
