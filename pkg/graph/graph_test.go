package graph

import (
	"testing"

	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
	if g.Root() != nil {
		t.Error("empty graph should have no root")
	}
}

func TestNodeID(t *testing.T) {
	a := NewNodeID("link/arm")
	b := NewNodeID("link/arm")
	c := NewNodeID("link/leg")

	if a != b {
		t.Error("same path should hash to the same ID")
	}
	if a == c {
		t.Error("different paths should hash to different IDs")
	}
	if len(a) != 64 {
		t.Errorf("ID length = %d, want 64 hex digits", len(a))
	}
	if got := a.Short(); len(got) != 8 || got != string(a[:8]) {
		t.Errorf("Short() = %q", got)
	}
	if !ZeroID.IsZero() || a.IsZero() {
		t.Error("IsZero misreports")
	}
	if ZeroID.Short() != "" {
		t.Errorf("ZeroID.Short() = %q, want empty", ZeroID.Short())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("link/arm")
	mass := 0.25
	node := &Node{
		ID:   id,
		Kind: NodeLink,
		Name: "arm",
		Data: LinkData{
			Shape: Shape{Kind: ShapeBox, Size: mgl64.Vec3{0.1, 0.02, 0.02}},
			Mass:  &mass,
		},
	}
	g.AddNode(node)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}

	found := g.Lookup("arm")
	if found == nil {
		t.Fatal("Lookup('arm') returned nil")
	}
	if found.ID != id {
		t.Errorf("lookup returned wrong node")
	}
	if must := g.MustLookup("arm"); must.ID != id {
		t.Errorf("MustLookup returned wrong node")
	}
	if g.Get(id) != node {
		t.Error("Get returned wrong node")
	}
	if g.Lookup("missing") != nil {
		t.Error("Lookup of missing name should return nil")
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic on a missing name")
		}
	}()
	New().MustLookup("nope")
}

func TestKindQueriesSorted(t *testing.T) {
	g := buildArm()

	links := g.Links()
	if len(links) != 2 {
		t.Fatalf("Links() = %d nodes, want 2", len(links))
	}
	if links[0].Name != "L_arm" || links[1].Name != "torso" {
		t.Errorf("Links() order = %s, %s", links[0].Name, links[1].Name)
	}
	if got := len(g.Mirrors()); got != 1 {
		t.Errorf("Mirrors() = %d, want 1", got)
	}
	if got := len(g.Joints()); got != 3 {
		t.Errorf("Joints() = %d, want 3", got)
	}
	if g.Root() == nil || g.Root().Name != "bot" {
		t.Error("Root() should be the robot node")
	}
}

func TestParentJointAndNameOf(t *testing.T) {
	g := buildArm()
	arm := g.MustLookup("L_arm")

	j := g.ParentJoint(arm.ID)
	if j == nil {
		t.Fatal("L_arm should have a parent joint")
	}
	jd := j.Data.(JointData)
	if g.NameOf(jd.Parent) != "torso" {
		t.Errorf("parent = %s, want torso", g.NameOf(jd.Parent))
	}

	torso := g.MustLookup("torso")
	tj := g.ParentJoint(torso.ID)
	if tj == nil {
		t.Fatal("torso should hang off base_link")
	}
	if got := g.NameOf(tj.Data.(JointData).Parent); got != BaseLinkName {
		t.Errorf("torso parent = %s, want %s", got, BaseLinkName)
	}
}

func TestChildren(t *testing.T) {
	g := buildArm()
	children := g.Children(g.Root())
	if len(children) != 6 {
		t.Errorf("robot children = %d, want 6", len(children))
	}
}

func TestPointOfMirror(t *testing.T) {
	g := buildArm()

	p, ok := PointOf(g, g.MustLookup("L_arm").ID, "wrist")
	if !ok {
		t.Fatal("L_arm should have a wrist point")
	}
	if p.XYZ != (mgl64.Vec3{0.1, 0.05, 0}) {
		t.Errorf("wrist = %v", p.XYZ)
	}

	p, ok = PointOf(g, g.MustLookup("R_arm").ID, "wrist")
	if !ok {
		t.Fatal("mirrored R_arm should inherit the wrist point")
	}
	if p.XYZ != (mgl64.Vec3{0.1, -0.05, 0}) {
		t.Errorf("mirrored wrist = %v, want y reflected", p.XYZ)
	}

	if _, ok := PointOf(g, g.MustLookup("R_arm").ID, "elbow"); ok {
		t.Error("unknown point should not resolve")
	}
}

func TestParseJointType(t *testing.T) {
	tests := []struct {
		in   string
		want JointType
		err  bool
	}{
		{"fixed", JointFixed, false},
		{"", JointFixed, false},
		{"Revolute", JointRevolute, false},
		{"continuous", JointContinuous, false},
		{"prismatic", JointPrismatic, false},
		{"ball", JointFixed, true},
	}
	for _, tt := range tests {
		got, err := ParseJointType(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseJointType(%q) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseJointType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if JointFixed.Moves() || !JointRevolute.Moves() {
		t.Error("Moves misreports")
	}
}

func TestKindStrings(t *testing.T) {
	kinds := map[NodeKind]string{
		NodeLink:     "link",
		NodeMirror:   "mirror",
		NodeJoint:    "joint",
		NodeRobot:    "robot",
		NodeKind(99): "unknown",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
	if !NodeMirror.IsLink() || NodeJoint.IsLink() {
		t.Error("IsLink misreports")
	}
	if ShapeCylinder.String() != "cylinder" {
		t.Errorf("ShapeCylinder.String() = %q", ShapeCylinder.String())
	}
	if mirror.PlaneXZ.String() != "xz" {
		t.Errorf("plane string = %q", mirror.PlaneXZ.String())
	}
}
