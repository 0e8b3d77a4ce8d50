package urdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Inertia formatting ---

func TestFormatInertia(t *testing.T) {
	tests := []struct {
		name string
		in   massprop.Tensor
		want string
	}{
		{
			"plain",
			massprop.NewTensor(1, 0.1, 0.2, 2, 0.3, 3),
			`ixx="1.00000000" ixy="0.10000000" ixz="0.20000000" iyy="2.00000000" iyz="0.30000000" izz="3.00000000"`,
		},
		{
			"tiny entries become zero",
			massprop.NewTensor(0.5, 5e-11, -5e-11, 0.5, 0, 0.5),
			`ixx="0.50000000" ixy="0.00000000" ixz="0.00000000" iyy="0.50000000" iyz="0.00000000" izz="0.50000000"`,
		},
		{
			"negative off-diagonal keeps its sign",
			massprop.NewTensor(1, -0.25, 0, 1, 0, 1),
			`ixx="1.00000000" ixy="-0.25000000" ixz="0.00000000" iyy="1.00000000" iyz="0.00000000" izz="1.00000000"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatInertia(tt.in); got != tt.want {
				t.Errorf("FormatInertia() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInertiaElement(t *testing.T) {
	got := InertiaElement(massprop.NewTensor(1, 0, 0, 1, 0, 1))
	assert.True(t, strings.HasPrefix(got, `<inertia ixx="1.00000000"`))
	assert.True(t, strings.HasSuffix(got, `/>`))
}

// --- Scalars ---

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{0.1, "0.1"},
		{1.0 / 3, "0.333333333"},
		{-2.5, "-2.5"},
		{123456.789012, "123456.789"},
	}
	for _, tt := range tests {
		if got := FormatScalar(tt.in); got != tt.want {
			t.Errorf("FormatScalar(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	assert.Equal(t, "0.333", Formatter{Digits: 3}.Scalar(1.0/3))
	assert.Equal(t, "1 -2 0.5", FormatVec3(mgl64.Vec3{1, -2, 0.5}))
}

func TestParseVec3(t *testing.T) {
	v, err := ParseVec3(" 1 -2.5  3e-3 ")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, -2.5, 0.003}, v)

	_, err = ParseVec3("1 2")
	assert.Error(t, err)
	_, err = ParseVec3("1 x 2")
	assert.Error(t, err)
}

func TestFormatAxis(t *testing.T) {
	assert.Equal(t, "0.0 1.0 0.0", FormatAxis(mgl64.Vec3{0, 1, 0}))
	assert.Equal(t, "0.0 0.0 -1.0", FormatAxis(mgl64.Vec3{0, 0, -1}))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#FF8000", HexColor(mgl64.Vec3{1, 0.502, 0}))
	c, err := ParseHexColor("#ff8000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c[0], 1e-9)
	assert.InDelta(t, 128.0/255, c[1], 1e-9)
	_, err = ParseHexColor("red")
	assert.Error(t, err)
}

// --- Part documents ---

func samplePart() *Part {
	return DefaultFormatter.NewPart(PartSpec{
		Name:         "L_upper_arm",
		Color:        mgl64.Vec3{1, 0, 0},
		Mass:         0.25,
		Volume:       1e-4,
		CenterOfMass: mgl64.Vec3{0.01, 0.02, -0.03},
		Inertia:      massprop.NewTensor(1e-4, 0, 0, 2e-4, 0, 3e-4),
		Points:       []NamedPoint{{Name: "point1", XYZ: mgl64.Vec3{0, 0.05, 0}}},
		Axis:         mgl64.Vec3{0, 1, 0},
	})
}

func TestPartEncodeLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, samplePart().Encode(&buf))
	out := buf.String()

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urdf_part>`,
		`<material name="#FF0000">`,
		`<color rgba="1 0 0 1.0"></color>`,
		`<link name="L_upper_arm">`,
		`<origin xyz="0.01 0.02 -0.03" rpy="0 0 0"></origin>`,
		`<mass value="0.25"></mass>`,
		`<volume value="0.0001"></volume>`,
		`<inertia ixx="0.00010000" ixy="0.00000000" ixz="0.00000000" iyy="0.00020000" iyz="0.00000000" izz="0.00030000"></inertia>`,
		`<center_of_mass>0.01 0.02 -0.03</center_of_mass>`,
		`<point name="point1" type="fixed">`,
		`<point_xyz>0 0.05 0</point_xyz>`,
		`<axis xyz="0.0 1.0 0.0"></axis>`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestPartRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, samplePart().Encode(&buf))

	p, err := DecodePart(&buf)
	require.NoError(t, err)
	v, err := p.Values()
	require.NoError(t, err)

	assert.Equal(t, "L_upper_arm", v.Name)
	require.NotNil(t, v.Mass)
	assert.Equal(t, 0.25, *v.Mass)
	require.NotNil(t, v.Volume)
	assert.Equal(t, 1e-4, *v.Volume)
	require.NotNil(t, v.CenterOfMass)
	assert.Equal(t, mgl64.Vec3{0.01, 0.02, -0.03}, *v.CenterOfMass)
	require.NotNil(t, v.Inertia)
	assert.InDelta(t, 2e-4, v.Inertia.Iyy(), 1e-12)
	require.Len(t, v.Points, 1)
	assert.Equal(t, mgl64.Vec3{0, 0.05, 0}, v.Points[0].XYZ)
	require.NotNil(t, v.Axis)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, *v.Axis)
	require.NotNil(t, v.Color)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, *v.Color)
}

func TestPartCenterOfMassFallback(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want *mgl64.Vec3
	}{
		{
			"center_of_mass wins",
			`<urdf_part><link name="a"><visual><origin xyz="3 3 3"/></visual><inertial><origin xyz="2 2 2"/></inertial><center_of_mass>1 1 1</center_of_mass></link></urdf_part>`,
			&mgl64.Vec3{1, 1, 1},
		},
		{
			"inertial origin next",
			`<urdf_part><link name="a"><visual><origin xyz="3 3 3"/></visual><inertial><origin xyz="2 2 2"/></inertial></link></urdf_part>`,
			&mgl64.Vec3{2, 2, 2},
		},
		{
			"visual origin last",
			`<urdf_part><link name="a"><visual><origin xyz="3 3 3"/></visual></link></urdf_part>`,
			&mgl64.Vec3{3, 3, 3},
		},
		{
			"none",
			`<urdf_part><link name="a"/></urdf_part>`,
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePart(strings.NewReader(tt.doc))
			require.NoError(t, err)
			v, err := p.Values()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.CenterOfMass)
		})
	}
}

func TestPartValuesRejectsGarbage(t *testing.T) {
	p, err := DecodePart(strings.NewReader(
		`<urdf_part><link name="a"><inertial><mass value="heavy"/></inertial></link></urdf_part>`))
	require.NoError(t, err)
	_, err = p.Values()
	assert.Error(t, err)
}

func TestPartFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/part.xml"
	require.NoError(t, WritePartFile(path, samplePart()))
	p, err := ReadPartFile(path)
	require.NoError(t, err)
	assert.Equal(t, "L_upper_arm", p.Link.Name)
}

// --- Robot ---

func TestRobotEncode(t *testing.T) {
	r := &Robot{Name: "arm"}
	r.AddMaterial(Material{Name: "#FF0000", Color: &Color{RGBA: "1 0 0 1.0"}})
	r.AddMaterial(Material{Name: "#FF0000", Color: &Color{RGBA: "1 0 0 1.0"}})
	r.Links = append(r.Links, RobotLink{
		Name: "upper",
		Inertial: &RobotInertial{
			Origin:  Origin{XYZ: "0 0 0.1", RPY: "0 0 0"},
			Mass:    Value{Value: "1"},
			Inertia: NewInertia(massprop.NewTensor(1, 0, 0, 1, 0, 1)),
		},
		Visual: &RobotGeometric{
			Origin:   Origin{XYZ: "0 0 0", RPY: "0 0 0"},
			Geometry: Geometry{Mesh: &MeshShape{Filename: PackagePath("arm", "", "/tmp/upper.stl")}},
		},
	})
	r.Joints = append(r.Joints, RobotJoint{
		Name:   JointName("base_link", "upper"),
		Type:   "revolute",
		Origin: Origin{XYZ: "0 0 0", RPY: "0 0 0"},
		Parent: LinkRef{Link: "base_link"},
		Child:  LinkRef{Link: "upper"},
		Axis:   &Axis{XYZ: "0.0 0.0 1.0"},
	})

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `<material name="#FF0000">`))
	assert.Contains(t, out, `<robot name="arm">`)
	assert.Contains(t, out, `<mesh filename="package://arm_description/meshes/upper.stl"></mesh>`)
	assert.Contains(t, out, `<joint name="base_link_to_upper" type="revolute">`)
	assert.NotContains(t, out, `<limit`)

	back, err := DecodeRobot(&buf)
	require.NoError(t, err)
	require.NotNil(t, back.Link("upper"))
	assert.Nil(t, back.Link("missing"))
}
