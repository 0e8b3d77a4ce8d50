// Package build walks a validated assembly graph and produces a URDF robot
// plus one part document per link. Link geometry comes from mesh files or
// from primitive shapes tessellated by a geometry kernel; mass properties
// are computed per link in parallel.
package build

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/chazu/urdfkit/pkg/graph"
	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/chazu/urdfkit/pkg/part"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidGraph wraps the blocking validation findings of a graph.
var ErrInvalidGraph = errors.New("build: invalid graph")

// DefaultMeshDir is used when neither the robot nor Options name one.
const DefaultMeshDir = "meshes"

// Options configures Build.
type Options struct {
	Kernel    kernel.Kernel    // tessellates primitive shapes
	Loader    meshio.Loader    // resolves mesh file references
	Engine    *massprop.Engine // nil uses massprop.DefaultConfig
	Formatter urdf.Formatter
	// DefaultDensity is pinned for links that pin neither mass nor
	// density. Zero disables it.
	DefaultDensity float64
	DefaultColor   mgl64.Vec3
	MeshDir        string
	Workers        int // concurrent link computations; <1 uses GOMAXPROCS
	Logger         *zap.Logger
}

func (o *Options) defaults() {
	if o.Engine == nil {
		o.Engine = massprop.New(massprop.DefaultConfig())
	}
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MeshDir == "" {
		o.MeshDir = DefaultMeshDir
	}
	if o.DefaultColor == (mgl64.Vec3{}) {
		o.DefaultColor = mgl64.Vec3{1, 1, 1}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Link is one computed robot link.
type Link struct {
	Name string
	ID   graph.NodeID
	// Mesh is the link surface in link coordinates; nil without geometry.
	Mesh *kernel.Mesh
	// MeshFile is the file name the robot references; empty for primitive
	// shapes, which are exported as URDF primitives.
	MeshFile string
	// Write is set when Mesh is new (mirrored) and must be saved as
	// MeshFile in the mesh directory.
	Write  bool
	Shape  graph.Shape
	Result part.Result
	Part   *urdf.Part
}

// Output is the result of Build.
type Output struct {
	Robot   *urdf.Robot
	MeshDir string
	Links   []*Link // sorted by name
}

// Link returns the named link, or nil.
func (o *Output) Link(name string) *Link {
	for _, l := range o.Links {
		if l.Name == name {
			return l
		}
	}
	return nil
}

type builder struct {
	g        *graph.Graph
	opts     Options
	log      *zap.Logger
	mirrorer *mirror.Mirrorer
	links    map[graph.NodeID]*Link
}

// Build validates g, computes every link and mirrored link, and assembles
// the robot. Graph warnings are logged; graph errors abort with
// ErrInvalidGraph.
func Build(ctx context.Context, g *graph.Graph, opts Options) (*Output, error) {
	opts.defaults()
	log := opts.Logger.Named("build")

	v := graph.ValidateAll(g)
	if !v.OK() {
		errs := make([]error, len(v.Errors))
		for i, e := range v.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}
	for _, w := range v.Warnings {
		log.Warn("graph warning", zap.String("node", g.NameOf(w.NodeID)), zap.String("warning", w.Message))
	}
	root := g.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no robot root", ErrInvalidGraph)
	}

	b := &builder{
		g:        g,
		opts:     opts,
		log:      log,
		mirrorer: mirror.New(opts.Engine),
		links:    make(map[graph.NodeID]*Link),
	}
	if err := b.computeLinks(ctx); err != nil {
		return nil, err
	}
	for _, n := range g.Mirrors() {
		if _, err := b.resolve(n.ID); err != nil {
			return nil, err
		}
	}
	return b.assemble(root), nil
}

// computeLinks computes every plain link concurrently.
func (b *builder) computeLinks(ctx context.Context) error {
	nodes := b.g.Links()
	out := make([]*Link, len(nodes))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.opts.Workers)
	for i, n := range nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := b.link(n)
			if err != nil {
				return fmt.Errorf("build: link %s: %w", n.Name, err)
			}
			out[i] = l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for _, l := range out {
		b.links[l.ID] = l
	}
	return nil
}

// link loads or tessellates the geometry of n and computes its mass
// properties.
func (b *builder) link(n *graph.Node) (*Link, error) {
	ld, ok := n.Data.(graph.LinkData)
	if !ok {
		return nil, fmt.Errorf("unexpected data type %T", n.Data)
	}
	l := &Link{Name: n.Name, ID: n.ID, Shape: ld.Shape}

	switch {
	case ld.Mesh != "":
		if b.opts.Loader == nil {
			return nil, errors.New("no mesh loader configured")
		}
		m, err := b.opts.Loader.Load(ld.Mesh)
		if err != nil {
			return nil, err
		}
		l.Mesh = m
		l.MeshFile = path.Base(filepath.ToSlash(ld.Mesh))
	case ld.Shape.Kind != graph.ShapeNone:
		if b.opts.Kernel == nil {
			return nil, errors.New("no geometry kernel configured")
		}
		m, err := Tessellate(b.opts.Kernel, n.Name, ld.Shape)
		if err != nil {
			return nil, err
		}
		l.Mesh = m
	}

	req := part.Request{
		Pinned:       reconcile.Inputs{Volume: ld.Volume, Density: ld.Density, Mass: ld.Mass},
		CenterOfMass: ld.CenterOfMass,
	}
	if l.Mesh != nil {
		req.Source = l.Mesh
	}
	if ld.Mass == nil && ld.Density == nil && b.opts.DefaultDensity > 0 {
		d := b.opts.DefaultDensity
		req.Pinned.Density = &d
	}
	res, err := part.Compute(b.opts.Engine, req)
	if err != nil {
		return nil, err
	}
	l.Result = res
	b.logDiagnostics(l)

	color := b.opts.DefaultColor
	if ld.Color != nil {
		color = *ld.Color
	}
	spec := urdf.PartSpec{
		Name:         n.Name,
		Color:        color,
		Mass:         res.Properties.Mass,
		Volume:       res.Properties.Volume,
		CenterOfMass: res.Properties.CenterOfMass,
		Inertia:      res.Properties.Inertia,
		Axis:         ld.Axis,
	}
	for _, p := range ld.Points {
		spec.Points = append(spec.Points, urdf.NamedPoint{Name: p.Name, XYZ: p.XYZ})
	}
	l.Part = b.opts.Formatter.NewPart(spec)
	return l, nil
}

// resolve returns the computed link for id, mirroring sources first.
func (b *builder) resolve(id graph.NodeID) (*Link, error) {
	if l, ok := b.links[id]; ok {
		return l, nil
	}
	n := b.g.Get(id)
	if n == nil {
		return nil, fmt.Errorf("build: node %s does not exist", id.Short())
	}
	md, ok := n.Data.(graph.MirrorData)
	if !ok {
		return nil, fmt.Errorf("build: %s %s was not computed", n.Kind, n.Name)
	}
	src, err := b.resolve(md.Source)
	if err != nil {
		return nil, err
	}

	l := &Link{Name: n.Name, ID: id, Shape: src.Shape}
	props := src.Result.Properties
	if src.Mesh != nil {
		res, err := b.mirrorer.Properties(src.Mesh, md.Plane, mirror.Authored{
			Mass:         src.Result.Reconciled.Mass,
			CenterOfMass: props.CenterOfMass,
		})
		if err != nil {
			return nil, fmt.Errorf("build: mirror %s: %w", n.Name, err)
		}
		l.Mesh = mirror.Mesh(src.Mesh, md.Plane)
		l.Mesh.PartName = n.Name
		if src.MeshFile != "" {
			l.MeshFile = n.Name + ".stl"
			l.Write = true
		}
		p := res.Properties
		l.Result = part.Result{
			Reconciled: reconcile.Result{
				Volume:         p.Volume,
				Density:        p.Density,
				Mass:           p.Mass,
				Rule:           reconcile.RuleDensityFromVolumeMass,
				VolumeFromMesh: true,
			},
			Properties: p,
		}
	} else {
		props.CenterOfMass = md.Plane.Reflect(props.CenterOfMass)
		l.Result = part.Result{Reconciled: src.Result.Reconciled, Properties: props}
	}
	b.logDiagnostics(l)

	doc, err := mirror.Document(src.Part, n.Name, md.Plane, l.Result.Properties, b.opts.Formatter)
	if err != nil {
		return nil, fmt.Errorf("build: mirror %s: %w", n.Name, err)
	}
	l.Part = doc
	b.links[id] = l
	return l, nil
}

func (b *builder) logDiagnostics(l *Link) {
	for _, d := range l.Result.Properties.Diagnostics.Warnings() {
		b.log.Warn("mass properties", zap.String("link", l.Name), zap.Stringer("diagnostic", d))
	}
	if l.Result.Reconciled.Conflict {
		b.log.Warn("pinned volume, density and mass disagree; density recomputed",
			zap.String("link", l.Name))
	}
	b.log.Debug("link computed",
		zap.String("link", l.Name),
		zap.Float64("mass", l.Result.Properties.Mass),
		zap.Float64("volume", l.Result.Properties.Volume),
		zap.Stringer("rule", l.Result.Reconciled.Rule))
}

// assemble produces the robot description: base_link, every link sorted by
// name, then the joints. Links with no parent joint are fixed to base_link.
func (b *builder) assemble(root *graph.Node) *Output {
	f := b.opts.Formatter
	meshDir := b.opts.MeshDir
	if rd, ok := root.Data.(graph.RobotData); ok && rd.MeshDir != "" {
		meshDir = rd.MeshDir
	}

	out := &Output{
		Robot:   &urdf.Robot{Name: root.Name},
		MeshDir: meshDir,
	}
	for _, l := range b.links {
		out.Links = append(out.Links, l)
	}
	sort.Slice(out.Links, func(i, j int) bool { return out.Links[i].Name < out.Links[j].Name })

	out.Robot.Links = append(out.Robot.Links, baseLink(f))
	for _, l := range out.Links {
		out.Robot.Links = append(out.Robot.Links, b.robotLink(out.Robot, meshDir, l))
	}

	jointed := make(map[graph.NodeID]bool)
	for _, n := range b.g.Joints() {
		jd := n.Data.(graph.JointData)
		jointed[jd.Child] = true
		out.Robot.Joints = append(out.Robot.Joints, b.robotJoint(n, jd))
	}
	for _, l := range out.Links {
		if jointed[l.ID] {
			continue
		}
		b.log.Warn("link has no parent joint; fixing it to base_link", zap.String("link", l.Name))
		out.Robot.Joints = append(out.Robot.Joints, urdf.RobotJoint{
			Name:   urdf.JointName(graph.BaseLinkName, l.Name),
			Type:   graph.JointFixed.String(),
			Origin: urdf.Origin{XYZ: "0 0 0", RPY: "0 0 0"},
			Parent: urdf.LinkRef{Link: graph.BaseLinkName},
			Child:  urdf.LinkRef{Link: l.Name},
		})
	}
	return out
}

// baseLink is the massless root every robot hangs from.
func baseLink(f urdf.Formatter) urdf.RobotLink {
	return urdf.RobotLink{
		Name: graph.BaseLinkName,
		Inertial: &urdf.RobotInertial{
			Origin:  urdf.Origin{XYZ: "0 0 0", RPY: "0 0 0"},
			Mass:    urdf.Value{Value: f.Scalar(0)},
			Inertia: urdf.NewInertia(massprop.NewTensor(0.01, 0, 0, 0, 0, 0)),
		},
	}
}

func (b *builder) robotLink(robot *urdf.Robot, meshDir string, l *Link) urdf.RobotLink {
	f := b.opts.Formatter
	p := l.Result.Properties
	rl := urdf.RobotLink{
		Name: l.Name,
		Inertial: &urdf.RobotInertial{
			Origin:  urdf.Origin{XYZ: f.Vec3(p.CenterOfMass), RPY: "0 0 0"},
			Mass:    urdf.Value{Value: f.Scalar(p.Mass)},
			Inertia: urdf.NewInertia(p.Inertia),
		},
	}

	geom, ok := b.geometry(robot.Name, meshDir, l)
	if !ok {
		return rl
	}
	origin := urdf.Origin{XYZ: "0 0 0", RPY: "0 0 0"}
	rl.Visual = &urdf.RobotGeometric{Origin: origin, Geometry: geom}
	rl.Collision = &urdf.RobotGeometric{Origin: origin, Geometry: geom}
	if l.Part != nil && l.Part.Material.Name != "" {
		robot.AddMaterial(l.Part.Material)
		rl.Visual.Material = &urdf.MaterialRef{Name: l.Part.Material.Name}
	}
	return rl
}

func (b *builder) geometry(robotName, meshDir string, l *Link) (urdf.Geometry, bool) {
	f := b.opts.Formatter
	switch {
	case l.MeshFile != "":
		return urdf.Geometry{Mesh: &urdf.MeshShape{Filename: urdf.PackagePath(robotName, meshDir, l.MeshFile)}}, true
	case l.Shape.Kind == graph.ShapeBox:
		return urdf.Geometry{Box: &urdf.BoxShape{Size: f.Vec3(l.Shape.Size)}}, true
	case l.Shape.Kind == graph.ShapeCylinder:
		return urdf.Geometry{Cylinder: &urdf.CylinderShape{
			Radius: f.Scalar(l.Shape.Radius),
			Length: f.Scalar(l.Shape.Length),
		}}, true
	case l.Shape.Kind == graph.ShapeSphere:
		return urdf.Geometry{Sphere: &urdf.SphereShape{Radius: f.Scalar(l.Shape.Radius)}}, true
	}
	return urdf.Geometry{}, false
}

// robotJoint converts a joint node. A named parent point overrides the
// authored origin.
func (b *builder) robotJoint(n *graph.Node, jd graph.JointData) urdf.RobotJoint {
	f := b.opts.Formatter
	parent, child := b.g.NameOf(jd.Parent), b.g.NameOf(jd.Child)

	origin := jd.Origin
	if jd.ParentPoint != "" {
		if p, ok := graph.PointOf(b.g, jd.Parent, jd.ParentPoint); ok {
			origin = p.XYZ
		}
	}
	name := n.Name
	if name == "" {
		name = urdf.JointName(parent, child)
	}

	rj := urdf.RobotJoint{
		Name:   name,
		Type:   jd.Type.String(),
		Origin: urdf.Origin{XYZ: f.Vec3(origin), RPY: f.Vec3(jd.RPY)},
		Parent: urdf.LinkRef{Link: parent},
		Child:  urdf.LinkRef{Link: child},
	}
	if jd.Type.Moves() {
		rj.Axis = &urdf.Axis{XYZ: f.Vec3(jd.Axis)}
	}
	if jd.Limit != nil {
		rj.Limit = &urdf.Limit{
			Lower:    f.Scalar(jd.Limit.Lower),
			Upper:    f.Scalar(jd.Limit.Upper),
			Effort:   f.Scalar(jd.Limit.Effort),
			Velocity: f.Scalar(jd.Limit.Velocity),
		}
	}
	return rj
}
