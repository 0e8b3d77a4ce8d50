package part

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoPoint is returned when the part document has no attachment point
// to move the origin to.
var ErrNoPoint = errors.New("part: no attachment point")

// ReoriginOptions controls Reorigin.
type ReoriginOptions struct {
	// Point names the attachment point that becomes the origin. Empty
	// selects the first point of the document.
	Point string
	// Output is the mesh path to write. Empty writes <stem>_origin.stl
	// next to the source.
	Output         string
	DefaultDensity float64
	Formatter      urdf.Formatter
}

// ReoriginPath returns the default output path of Reorigin.
func ReoriginPath(stlPath string) string {
	return filepath.Join(filepath.Dir(stlPath), meshio.Stem(stlPath)+"_origin.stl")
}

// Reorigin translates the mesh at stlPath so that one of its attachment
// points sits at the origin, and writes the moved mesh with a part
// document whose center of mass and points are shifted to match. The
// document mass is kept. Returns the output mesh path.
func Reorigin(e *massprop.Engine, stlPath string, opts ReoriginOptions) (string, Result, error) {
	docPath := DocPath(stlPath)
	doc, err := urdf.ReadPartFile(docPath)
	if err != nil {
		return "", Result{}, err
	}
	prev, err := doc.Values()
	if err != nil {
		return "", Result{}, fmt.Errorf("%s: %w", docPath, err)
	}

	origin, err := selectPoint(prev.Points, opts.Point)
	if err != nil {
		return "", Result{}, fmt.Errorf("%s: %w", docPath, err)
	}

	mesh, err := meshio.Load(stlPath)
	if err != nil {
		return "", Result{}, err
	}
	out := opts.Output
	if out == "" {
		out = ReoriginPath(stlPath)
	}
	moved := mesh.Translated(origin.Mul(-1))
	moved.PartName = meshio.Stem(out)
	if err := meshio.Save(out, moved); err != nil {
		return "", Result{}, err
	}

	points := make([]urdf.NamedPoint, len(prev.Points))
	for i, p := range prev.Points {
		points[i] = urdf.NamedPoint{Name: p.Name, XYZ: p.XYZ.Sub(origin)}
	}
	fo := FileOptions{
		Pinned:         reconcile.Inputs{Mass: prev.Mass},
		Color:          prev.Color,
		Axis:           prev.Axis,
		Points:         points,
		DefaultDensity: opts.DefaultDensity,
		Formatter:      opts.Formatter,
	}
	if prev.CenterOfMass != nil {
		com := prev.CenterOfMass.Sub(origin)
		fo.CenterOfMass = &com
	}
	_, res, err := File(e, out, fo)
	if err != nil {
		return "", Result{}, err
	}
	return out, res, nil
}

func selectPoint(points []urdf.NamedPoint, name string) (mgl64.Vec3, error) {
	if len(points) == 0 {
		return mgl64.Vec3{}, ErrNoPoint
	}
	if name == "" {
		return points[0].XYZ, nil
	}
	for _, p := range points {
		if p.Name == name {
			return p.XYZ, nil
		}
	}
	return mgl64.Vec3{}, fmt.Errorf("%w: %q", ErrNoPoint, name)
}
