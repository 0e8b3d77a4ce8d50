package graph

import (
	"fmt"
	"strings"

	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// ShapeKind distinguishes between primitive shapes.
type ShapeKind int

const (
	ShapeNone     ShapeKind = iota // geometry comes from a mesh file
	ShapeBox                       // centered rectangular solid
	ShapeCylinder                  // centered cylinder along Z
	ShapeSphere                    // centered sphere
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeNone:
		return "none"
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Shape is a primitive solid, tessellated at build time.
type Shape struct {
	Kind   ShapeKind  `json:"kind"`
	Size   mgl64.Vec3 `json:"size,omitempty"`   // box extents
	Radius float64    `json:"radius,omitempty"` // cylinder, sphere
	Length float64    `json:"length,omitempty"` // cylinder
}

// Point is a named attachment point in link coordinates.
type Point struct {
	Name string     `json:"name"`
	XYZ  mgl64.Vec3 `json:"xyz"`
}

// ---------------------------------------------------------------------------
// Link
// ---------------------------------------------------------------------------

// LinkData is a part. Exactly one of Mesh or Shape supplies geometry.
// Unset physical values are nil and get reconciled at build time.
type LinkData struct {
	Mesh         string      `json:"mesh,omitempty"`
	Shape        Shape       `json:"shape"`
	Mass         *float64    `json:"mass,omitempty"`
	Density      *float64    `json:"density,omitempty"`
	Volume       *float64    `json:"volume,omitempty"`
	CenterOfMass *mgl64.Vec3 `json:"center_of_mass,omitempty"`
	Color        *mgl64.Vec3 `json:"color,omitempty"`
	Points       []Point     `json:"points,omitempty"`
	Axis         mgl64.Vec3  `json:"axis"`
}

func (LinkData) nodeData() {}

// HasGeometry reports whether the link names a mesh or a shape.
func (d LinkData) HasGeometry() bool {
	return d.Mesh != "" || d.Shape.Kind != ShapeNone
}

// Point returns the named attachment point.
func (d LinkData) Point(name string) (Point, bool) {
	for _, p := range d.Points {
		if p.Name == name {
			return p, true
		}
	}
	return Point{}, false
}

// ---------------------------------------------------------------------------
// Mirror
// ---------------------------------------------------------------------------

// MirrorData reflects Source across Plane. The mirrored link keeps the
// source's mass; density and inertia are recomputed from the reflected
// geometry.
type MirrorData struct {
	Source NodeID       `json:"source"`
	Plane  mirror.Plane `json:"plane"`
}

func (MirrorData) nodeData() {}

// ---------------------------------------------------------------------------
// Joint
// ---------------------------------------------------------------------------

// JointType enumerates URDF joint types.
type JointType int

const (
	JointFixed JointType = iota
	JointRevolute
	JointContinuous
	JointPrismatic
)

func (t JointType) String() string {
	switch t {
	case JointFixed:
		return "fixed"
	case JointRevolute:
		return "revolute"
	case JointContinuous:
		return "continuous"
	case JointPrismatic:
		return "prismatic"
	default:
		return "unknown"
	}
}

// Moves reports whether the joint has a degree of freedom.
func (t JointType) Moves() bool { return t != JointFixed }

// ParseJointType parses a URDF joint type name.
func ParseJointType(s string) (JointType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return JointFixed, nil
	case "revolute":
		return JointRevolute, nil
	case "continuous":
		return JointContinuous, nil
	case "prismatic":
		return JointPrismatic, nil
	}
	return JointFixed, fmt.Errorf("unknown joint type %q", s)
}

// Limit bounds a revolute or prismatic joint.
type Limit struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Effort   float64 `json:"effort"`
	Velocity float64 `json:"velocity"`
}

// DefaultLimit is a full turn either way with no effort or velocity cap.
var DefaultLimit = Limit{Lower: -3.14159, Upper: 3.14159}

// JointData connects Child to Parent. When ParentPoint names an attachment
// point of the parent, the joint origin is that point; otherwise Origin.
type JointData struct {
	Type        JointType  `json:"type"`
	Parent      NodeID     `json:"parent"`
	Child       NodeID     `json:"child"`
	ParentPoint string     `json:"parent_point,omitempty"`
	Origin      mgl64.Vec3 `json:"origin"`
	RPY         mgl64.Vec3 `json:"rpy"`
	Axis        mgl64.Vec3 `json:"axis"`
	Limit       *Limit     `json:"limit,omitempty"`
}

func (JointData) nodeData() {}

// ---------------------------------------------------------------------------
// Robot
// ---------------------------------------------------------------------------

// RobotData is the assembly root. Its node's Children are every link,
// mirror and joint of the robot.
type RobotData struct {
	MeshDir string `json:"mesh_dir,omitempty"`
}

func (RobotData) nodeData() {}
