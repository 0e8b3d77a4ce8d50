// Package part runs the per-part pipeline: reconcile the pinned physical
// values, settle the center of mass, then compute the inertia tensor with
// the final density.
package part

import (
	"math"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/go-gl/mathgl/mgl64"
)

// Request describes one part.
type Request struct {
	// Source is the part surface; nil when no mesh is loaded.
	Source       kernel.Source
	Pinned       reconcile.Inputs
	CenterOfMass *mgl64.Vec3
}

// Result is the reconciled and computed part.
type Result struct {
	Reconciled reconcile.Result
	Properties massprop.Properties
}

// Compute reconciles first and computes inertia last. Without a mesh the
// reconciled values are still returned, with a zero tensor and a
// missing-input diagnostic.
func Compute(e *massprop.Engine, req Request) (Result, error) {
	var diags massprop.Diagnostics
	var meshVolume reconcile.VolumeFunc
	var signed float64
	if req.Source != nil {
		meshVolume = func() (float64, error) {
			v, d := e.Volume(req.Source)
			diags = diags.Merge(d)
			signed = v
			return v, nil
		}
	}

	rec, err := reconcile.Reconcile(req.Pinned, meshVolume)
	if err != nil {
		return Result{}, err
	}

	props := massprop.Properties{
		SignedVolume: rec.Volume,
		Volume:       math.Abs(rec.Volume),
		Density:      rec.Density,
		Mass:         rec.Mass,
	}
	// Reconcile works on magnitudes; keep the winding sign of the mesh.
	if rec.VolumeFromMesh {
		props.SignedVolume = signed
	}
	if req.Source == nil {
		if req.CenterOfMass != nil {
			props.CenterOfMass = *req.CenterOfMass
		}
		props.Diagnostics = massprop.Diagnostics{{
			Kind: massprop.KindMissingInput, Severity: massprop.SeverityWarning, Cell: -1, Axis: -1,
		}}
		return Result{Reconciled: rec, Properties: props}, nil
	}

	com, cd := e.CenterOfMass(req.Source, req.CenterOfMass)
	props.CenterOfMass = com
	diags = diags.Merge(cd)

	tensor, td := e.InertiaTensor(req.Source, rec.Density, com)
	props.Inertia = tensor
	props.Diagnostics = diags.Merge(td)
	return Result{Reconciled: rec, Properties: props}, nil
}
