package mirror

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// tetra is an asymmetric tetrahedron of volume 1 with every product of
// inertia non-zero.
func tetra() kernel.Triangles {
	o := mgl64.Vec3{0.3, 0.5, 0.7}
	a := o
	b := o.Add(mgl64.Vec3{1, 0, 0})
	c := o.Add(mgl64.Vec3{0, 2, 0})
	d := o.Add(mgl64.Vec3{0, 0, 3})
	return kernel.Triangles{{a, c, b}, {a, b, d}, {a, d, c}, {b, c, d}}
}

func newEngine() *massprop.Engine {
	return massprop.New(massprop.DefaultConfig())
}

// --- Naming ---

func TestName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"L_arm", "R_arm"},
		{"R_arm", "L_arm"},
		{"l_leg", "r_leg"},
		{"r_leg", "l_leg"},
		{"torso", "mirrored_torso"},
		{"Left_arm", "mirrored_Left_arm"},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePlane(t *testing.T) {
	tests := []struct {
		in   string
		want Plane
	}{
		{"xz", PlaneXZ},
		{"Y", PlaneXZ},
		{"", PlaneXZ},
		{"yz", PlaneYZ},
		{"x", PlaneYZ},
		{"xy", PlaneXY},
	}
	for _, tt := range tests {
		got, err := ParsePlane(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParsePlane("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "xy", PlaneXY.String())
}

// --- Geometry ---

func TestCellsKeepOutwardWinding(t *testing.T) {
	e := newEngine()
	for _, p := range []Plane{PlaneXZ, PlaneYZ, PlaneXY} {
		v, diags := e.Volume(Cells(tetra(), p))
		assert.InDelta(t, 1.0, v, 1e-12, "plane %s", p)
		assert.False(t, diags.Has(massprop.KindInvertedWinding))
	}
}

func TestMirrorTwiceIsIdentity(t *testing.T) {
	e := newEngine()
	orig := tetra()
	twice := Cells(Cells(orig, PlaneXZ), PlaneXZ)
	require.Len(t, twice, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i], twice[i])
	}

	com, _ := e.CenterOfMass(orig, nil)
	want, _ := e.InertiaTensor(orig, 2, com)
	back, _ := e.InertiaTensor(twice, 2, com)
	assert.True(t, want.ApproxEqual(back, 1e-12))
}

func TestMeshMirror(t *testing.T) {
	m := kernel.FromTriangles("L_part", tetra())
	got := Mesh(m, PlaneXZ)

	assert.Equal(t, m.PartName, got.PartName)
	assert.NotSame(t, &m.Vertices[0], &got.Vertices[0])
	for i, tri := range got.Triangles() {
		n := mgl64.Vec3{got.Normals[9*i], got.Normals[9*i+1], got.Normals[9*i+2]}
		assert.True(t, n.ApproxEqualThreshold(tri.Normal(), 1e-12), "triangle %d normal disagrees with winding", i)
	}
	back := Mesh(got, PlaneXZ)
	assert.Equal(t, m.Vertices, back.Vertices)
	assert.Equal(t, m.Indices, back.Indices)
	assert.Equal(t, m.Normals, back.Normals)
}

// --- Mass properties ---

func TestPropertiesRecomputeFromGeometry(t *testing.T) {
	e := newEngine()
	orig := tetra()
	com, _ := e.CenterOfMass(orig, nil)
	want, _ := e.InertiaTensor(orig, 2, com)

	res, err := New(e).Properties(orig, PlaneXZ, Authored{Mass: 2, CenterOfMass: com})
	require.NoError(t, err)
	p := res.Properties

	assert.InDelta(t, 1.0, p.Volume, 1e-12)
	assert.InDelta(t, 2.0, p.Density, 1e-12)
	assert.Equal(t, mgl64.Vec3{com[0], -com[1], com[2]}, p.CenterOfMass)

	// Reflecting y flips the products involving y and nothing else.
	got := p.Inertia
	assert.InDelta(t, want.Ixx(), got.Ixx(), 1e-12)
	assert.InDelta(t, want.Iyy(), got.Iyy(), 1e-12)
	assert.InDelta(t, want.Izz(), got.Izz(), 1e-12)
	assert.InDelta(t, -want.Ixy(), got.Ixy(), 1e-12)
	assert.InDelta(t, -want.Iyz(), got.Iyz(), 1e-12)
	assert.InDelta(t, want.Ixz(), got.Ixz(), 1e-12)
	assert.NotZero(t, want.Ixz())
	assert.True(t, got.IsSymmetric())
}

func TestPropertiesZeroVolume(t *testing.T) {
	flat := kernel.Triangles{{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	_, err := New(newEngine()).Properties(flat, PlaneXZ, Authored{Mass: 1})
	assert.ErrorIs(t, err, ErrZeroVolume)
}

// --- Documents ---

func TestDocument(t *testing.T) {
	doc := urdf.DefaultFormatter.NewPart(urdf.PartSpec{
		Name:         "L_arm",
		Color:        mgl64.Vec3{0, 0, 1},
		Mass:         2,
		Volume:       1,
		CenterOfMass: mgl64.Vec3{0.1, 0.2, 0.3},
		Points:       []urdf.NamedPoint{{Name: "point1", XYZ: mgl64.Vec3{1, 2, 3}}},
		Axis:         mgl64.Vec3{0, 1, 0},
	})
	props := massprop.Properties{
		Mass:         2,
		Volume:       1,
		CenterOfMass: mgl64.Vec3{0.1, -0.2, 0.3},
		Inertia:      massprop.NewTensor(1, 0.5, 0, 1, 0, 1),
	}

	out, err := Document(doc, "R_arm", PlaneXZ, props, urdf.DefaultFormatter)
	require.NoError(t, err)
	assert.Equal(t, "R_arm", out.Link.Name)
	assert.Equal(t, "0.1 -0.2 0.3", out.Link.CenterOfMass)
	assert.Equal(t, "0.1 -0.2 0.3", out.Link.Inertial.Origin.XYZ)
	assert.Equal(t, "0.50000000", out.Link.Inertial.Inertia.Ixy)
	assert.Equal(t, "1 -2 3", out.Points[0].XYZ)
	assert.Equal(t, "0.0 1.0 0.0", out.Joint.Axis.XYZ)
	assert.Equal(t, "#0000FF", out.Material.Name)

	// The source document is untouched.
	assert.Equal(t, "L_arm", doc.Link.Name)
	assert.Equal(t, "1 2 3", doc.Points[0].XYZ)
	assert.Equal(t, "0.1 0.2 0.3", doc.Link.Inertial.Origin.XYZ)
}

// --- Files ---

func writePart(t *testing.T, dir, stem string, withDoc bool) {
	t.Helper()
	require.NoError(t, meshio.Save(filepath.Join(dir, stem+".stl"), kernel.FromTriangles(stem, tetra())))
	if !withDoc {
		return
	}
	doc := urdf.DefaultFormatter.NewPart(urdf.PartSpec{
		Name:         stem,
		Mass:         2,
		Volume:       1,
		CenterOfMass: mgl64.Vec3{0.55, 1, 1.45},
		Axis:         mgl64.Vec3{1, 0, 0},
	})
	require.NoError(t, urdf.WritePartFile(filepath.Join(dir, stem+".xml"), doc))
}

func TestBulk(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "L_arm", true)
	writePart(t, dir, "l_foot", false)
	writePart(t, dir, "L_hand", true)
	writePart(t, dir, "R_hand", false)
	writePart(t, dir, "torso", true)

	reports, err := New(newEngine()).Bulk(context.Background(), dir, FileOptions{
		Plane:     PlaneXZ,
		Formatter: urdf.DefaultFormatter,
		Workers:   2,
	})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	byTarget := map[string]Report{}
	for _, r := range reports {
		byTarget[filepath.Base(r.Target)] = r
	}
	assert.Equal(t, OutcomeMirrored, byTarget["R_arm.stl"].Outcome)
	assert.Equal(t, OutcomeMeshOnly, byTarget["r_foot.stl"].Outcome)
	assert.Equal(t, OutcomeSkipped, byTarget["R_hand.stl"].Outcome)
	assert.ErrorIs(t, byTarget["R_hand.stl"].Err, ErrTargetExists)

	doc, err := urdf.ReadPartFile(filepath.Join(dir, "R_arm.xml"))
	require.NoError(t, err)
	vals, err := doc.Values()
	require.NoError(t, err)
	assert.Equal(t, "R_arm", vals.Name)
	assert.Equal(t, mgl64.Vec3{0.55, -1, 1.45}, *vals.CenterOfMass)
	assert.InDelta(t, 2.0, *vals.Mass, 1e-12)

	mirrored, err := meshio.Load(filepath.Join(dir, "R_arm.stl"))
	require.NoError(t, err)
	v, _ := newEngine().Volume(mirrored)
	assert.InDelta(t, 1.0, v, 1e-5)

	_, err = os.Stat(filepath.Join(dir, "mirrored_torso.stl"))
	assert.True(t, os.IsNotExist(err), "bulk only converts left-hand parts")
}

func TestFileOverwrite(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "L_arm", true)
	m := New(newEngine())
	opts := FileOptions{Plane: PlaneXZ, Formatter: urdf.DefaultFormatter}

	first := m.File(filepath.Join(dir, "L_arm.stl"), opts)
	require.NoError(t, first.Err)
	assert.Equal(t, OutcomeMirrored, first.Outcome)

	second := m.File(filepath.Join(dir, "L_arm.stl"), opts)
	assert.Equal(t, OutcomeSkipped, second.Outcome)

	opts.Overwrite = true
	third := m.File(filepath.Join(dir, "L_arm.stl"), opts)
	assert.Equal(t, OutcomeMirrored, third.Outcome)
}

func TestFileWithoutCenterOfMassUsesCentroid(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "L_leg", true)
	docPath := filepath.Join(dir, "L_leg.xml")
	doc, err := urdf.ReadPartFile(docPath)
	require.NoError(t, err)
	doc.Link.CenterOfMass = ""
	doc.Link.Inertial.Origin = nil
	doc.Link.Visual.Origin = nil
	require.NoError(t, urdf.WritePartFile(docPath, doc))

	core, logs := observer.New(zap.WarnLevel)
	rep := New(newEngine()).File(filepath.Join(dir, "L_leg.stl"), FileOptions{
		Plane:     PlaneXZ,
		Formatter: urdf.DefaultFormatter,
		Logger:    zap.New(core),
	})
	require.NoError(t, rep.Err)
	assert.Equal(t, OutcomeMirrored, rep.Outcome)
	assert.Equal(t, 1, logs.FilterMessageSnippet("no center of mass").Len())

	out, err := urdf.ReadPartFile(filepath.Join(dir, "R_leg.xml"))
	require.NoError(t, err)
	vals, err := out.Values()
	require.NoError(t, err)
	require.NotNil(t, vals.CenterOfMass)
	assert.True(t, vals.CenterOfMass.ApproxEqualThreshold(mgl64.Vec3{0.55, -1, 1.45}, 1e-5),
		"center of mass %v", *vals.CenterOfMass)
}
