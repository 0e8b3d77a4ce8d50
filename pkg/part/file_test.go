package part

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBox(t *testing.T, dir, name string, size mgl64.Vec3) string {
	t.Helper()
	path := filepath.Join(dir, name+".stl")
	require.NoError(t, meshio.Save(path, kernel.FromTriangles(name, kernel.Box(mgl64.Vec3{}, size))))
	return path
}

func readValues(t *testing.T, path string) urdf.PartValues {
	t.Helper()
	doc, err := urdf.ReadPartFile(path)
	require.NoError(t, err)
	v, err := doc.Values()
	require.NoError(t, err)
	return v
}

func TestFileDefaultDensity(t *testing.T) {
	dir := t.TempDir()
	stl := writeBox(t, dir, "block", mgl64.Vec3{0.1, 0.1, 0.1})

	e := massprop.New(massprop.DefaultConfig())
	docPath, res, err := File(e, stl, FileOptions{DefaultDensity: 1000, Formatter: urdf.DefaultFormatter})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "block.xml"), docPath)
	assert.InDelta(t, 1.0, res.Properties.Mass, 1e-6)

	v := readValues(t, docPath)
	assert.Equal(t, "block", v.Name)
	require.NotNil(t, v.Mass)
	assert.InDelta(t, 1.0, *v.Mass, 1e-6)
	require.NotNil(t, v.Color)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, *v.Color)
}

func TestFileKeepsDocumentMass(t *testing.T) {
	dir := t.TempDir()
	stl := writeBox(t, dir, "plate", mgl64.Vec3{1, 1, 0.01})

	e := massprop.New(massprop.DefaultConfig())
	opts := FileOptions{
		Pinned:    reconcile.Inputs{Mass: reconcile.Ptr(2)},
		Axis:      &mgl64.Vec3{0, 0, 1},
		Color:     &mgl64.Vec3{1, 0, 0},
		Formatter: urdf.DefaultFormatter,
	}
	docPath, _, err := File(e, stl, opts)
	require.NoError(t, err)

	// Grow the mesh; the mass carried by the document stays put and the
	// density follows.
	writeBox(t, dir, "plate", mgl64.Vec3{1, 1, 0.02})
	_, res, err := File(e, stl, FileOptions{DefaultDensity: 1000, Formatter: urdf.DefaultFormatter})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Properties.Mass, 1e-9)
	// STL stores float32 coordinates, so the volume is not exactly 0.02.
	assert.InEpsilon(t, 100.0, res.Properties.Density, 1e-4)

	v := readValues(t, docPath)
	require.NotNil(t, v.Axis)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, *v.Axis)
	require.NotNil(t, v.Color)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, *v.Color)
}

func TestFileErrors(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())
	dir := t.TempDir()

	_, _, err := File(e, filepath.Join(dir, "missing.stl"), FileOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	stl := writeBox(t, dir, "bare", mgl64.Vec3{1, 1, 1})
	_, _, err = File(e, stl, FileOptions{})
	assert.ErrorIs(t, err, reconcile.ErrUnderdetermined)

	require.NoError(t, os.WriteFile(DocPath(stl), []byte("<urdf_part><link"), 0o644))
	_, _, err = File(e, stl, FileOptions{DefaultDensity: 1})
	assert.Error(t, err)
}
