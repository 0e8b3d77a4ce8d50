package part

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
)

// FileOptions controls File.
type FileOptions struct {
	// Pinned values override those read from an existing document.
	Pinned       reconcile.Inputs
	CenterOfMass *mgl64.Vec3
	Color        *mgl64.Vec3
	Axis         *mgl64.Vec3
	// Points replace those of an existing document when non-nil.
	Points []urdf.NamedPoint
	// DefaultDensity is pinned when nothing else pins mass or density.
	DefaultDensity float64
	DefaultColor   mgl64.Vec3
	Formatter      urdf.Formatter
}

// DocPath returns the part document path belonging to a mesh path.
func DocPath(stlPath string) string {
	return filepath.Join(filepath.Dir(stlPath), meshio.Stem(stlPath)+".xml")
}

// File computes the mesh at stlPath and writes its part document next to
// it. When the document already exists its mass is kept as a pin, and its
// points, axis and color carry over. Returns the document path.
func File(e *massprop.Engine, stlPath string, opts FileOptions) (string, Result, error) {
	mesh, err := meshio.Load(stlPath)
	if err != nil {
		return "", Result{}, err
	}
	docPath := DocPath(stlPath)

	var prev urdf.PartValues
	switch doc, err := urdf.ReadPartFile(docPath); {
	case err == nil:
		if prev, err = doc.Values(); err != nil {
			return "", Result{}, fmt.Errorf("%s: %w", docPath, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", Result{}, err
	}

	pinned := opts.Pinned
	if pinned.Mass == nil && pinned.Density == nil && pinned.Volume == nil {
		pinned.Mass = prev.Mass
	}
	if pinned.Mass == nil && pinned.Density == nil && opts.DefaultDensity > 0 {
		d := opts.DefaultDensity
		pinned.Density = &d
	}

	res, err := Compute(e, Request{Source: mesh, Pinned: pinned, CenterOfMass: opts.CenterOfMass})
	if err != nil {
		return "", Result{}, fmt.Errorf("%s: %w", stlPath, err)
	}

	spec := urdf.PartSpec{
		Name:         mesh.PartName,
		Color:        opts.DefaultColor,
		Mass:         res.Properties.Mass,
		Volume:       res.Properties.Volume,
		CenterOfMass: res.Properties.CenterOfMass,
		Inertia:      res.Properties.Inertia,
		Points:       prev.Points,
	}
	if spec.Color == (mgl64.Vec3{}) {
		spec.Color = mgl64.Vec3{1, 1, 1}
	}
	if prev.Color != nil {
		spec.Color = *prev.Color
	}
	if opts.Color != nil {
		spec.Color = *opts.Color
	}
	if prev.Axis != nil {
		spec.Axis = *prev.Axis
	}
	if opts.Axis != nil {
		spec.Axis = *opts.Axis
	}
	if opts.Points != nil {
		spec.Points = opts.Points
	}

	if err := urdf.WritePartFile(docPath, opts.Formatter.NewPart(spec)); err != nil {
		return "", Result{}, err
	}
	return docPath, res, nil
}
