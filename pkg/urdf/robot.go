package urdf

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
)

// Robot is an assembled URDF description.
type Robot struct {
	XMLName   xml.Name     `xml:"robot"`
	Name      string       `xml:"name,attr"`
	Materials []Material   `xml:"material"`
	Links     []RobotLink  `xml:"link"`
	Joints    []RobotJoint `xml:"joint"`
}

// RobotLink is a link in an assembled robot.
type RobotLink struct {
	Name      string          `xml:"name,attr"`
	Inertial  *RobotInertial  `xml:"inertial,omitempty"`
	Visual    *RobotGeometric `xml:"visual,omitempty"`
	Collision *RobotGeometric `xml:"collision,omitempty"`
}

// RobotInertial is the inertial element of a robot link.
type RobotInertial struct {
	Origin  Origin   `xml:"origin"`
	Mass    Value    `xml:"mass"`
	Inertia *Inertia `xml:"inertia"`
}

// RobotGeometric is a visual or collision element.
type RobotGeometric struct {
	Origin   Origin       `xml:"origin"`
	Geometry Geometry     `xml:"geometry"`
	Material *MaterialRef `xml:"material,omitempty"`
}

// Geometry holds exactly one shape.
type Geometry struct {
	Mesh     *MeshShape     `xml:"mesh,omitempty"`
	Box      *BoxShape      `xml:"box,omitempty"`
	Cylinder *CylinderShape `xml:"cylinder,omitempty"`
	Sphere   *SphereShape   `xml:"sphere,omitempty"`
}

type MeshShape struct {
	Filename string `xml:"filename,attr"`
}

type BoxShape struct {
	Size string `xml:"size,attr"`
}

type CylinderShape struct {
	Radius string `xml:"radius,attr"`
	Length string `xml:"length,attr"`
}

type SphereShape struct {
	Radius string `xml:"radius,attr"`
}

// RobotJoint connects a parent and child link.
type RobotJoint struct {
	Name   string  `xml:"name,attr"`
	Type   string  `xml:"type,attr"`
	Origin Origin  `xml:"origin"`
	Parent LinkRef `xml:"parent"`
	Child  LinkRef `xml:"child"`
	Axis   *Axis   `xml:"axis,omitempty"`
	Limit  *Limit  `xml:"limit,omitempty"`
}

// LinkRef refers to a link by name.
type LinkRef struct {
	Link string `xml:"link,attr"`
}

// Limit bounds a revolute or prismatic joint.
type Limit struct {
	Lower    string `xml:"lower,attr"`
	Upper    string `xml:"upper,attr"`
	Effort   string `xml:"effort,attr"`
	Velocity string `xml:"velocity,attr"`
}

// JointName is the conventional parent_to_child joint name.
func JointName(parent, child string) string {
	return parent + "_to_" + child
}

// PackagePath returns the package:// URI of a mesh shipped in the robot's
// description package.
func PackagePath(robot, meshDir, file string) string {
	if meshDir == "" {
		meshDir = "meshes"
	}
	return fmt.Sprintf("package://%s_description/%s/%s", robot, meshDir, path.Base(file))
}

// AddMaterial registers a material once by name.
func (r *Robot) AddMaterial(m Material) {
	for _, have := range r.Materials {
		if have.Name == m.Name {
			return
		}
	}
	r.Materials = append(r.Materials, m)
	sort.Slice(r.Materials, func(i, j int) bool { return r.Materials[i].Name < r.Materials[j].Name })
}

// Link returns the named link, or nil.
func (r *Robot) Link(name string) *RobotLink {
	for i := range r.Links {
		if r.Links[i].Name == name {
			return &r.Links[i]
		}
	}
	return nil
}

// Encode writes the robot with an XML declaration and indentation.
func (r *Robot) Encode(w io.Writer) error {
	return encodeDocument(w, r)
}

// DecodeRobot reads a robot description.
func DecodeRobot(rd io.Reader) (*Robot, error) {
	var r Robot
	if err := xml.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("urdf: decode robot: %w", err)
	}
	return &r, nil
}
