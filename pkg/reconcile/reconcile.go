// Package reconcile completes a part's volume, density and mass from
// whichever of them the user pinned, using the mesh volume when only one
// value is known.
package reconcile

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnderdetermined means too few values were pinned and no mesh
	// volume is available.
	ErrUnderdetermined = errors.New("reconcile: need at least two of volume, density, mass, or a mesh")
	// ErrZeroDivisor means a rule would divide by a zero volume or density.
	ErrZeroDivisor = errors.New("reconcile: division by zero")
)

// Rule identifies which relation produced the result.
type Rule int

const (
	RuleNone Rule = iota
	RuleDensityFromVolumeMass
	RuleMassFromVolumeDensity
	RuleVolumeFromDensityMass
)

func (r Rule) String() string {
	switch r {
	case RuleDensityFromVolumeMass:
		return "density = mass / volume"
	case RuleMassFromVolumeDensity:
		return "mass = volume * density"
	case RuleVolumeFromDensityMass:
		return "volume = mass / density"
	default:
		return "none"
	}
}

// Inputs are the pinned values; nil means not pinned.
type Inputs struct {
	Volume  *float64
	Density *float64
	Mass    *float64
}

// VolumeFunc returns the mesh volume. A nil VolumeFunc means no mesh.
type VolumeFunc func() (float64, error)

// Result holds all three values once reconciled.
type Result struct {
	Volume  float64
	Density float64
	Mass    float64
	Rule    Rule
	// VolumeFromMesh is set when the volume was taken from the mesh.
	VolumeFromMesh bool
	// Conflict is set when all three were pinned and do not satisfy
	// mass = volume * density. Volume and mass are kept.
	Conflict bool
}

// conflictTolerance is the relative mismatch tolerated before a fully
// pinned triple is flagged.
const conflictTolerance = 1e-9

// Reconcile applies the first matching rule:
//  1. volume and mass pinned: density = mass / volume
//  2. volume and density pinned: mass = volume * density
//  3. density and mass pinned: volume = mass / density
//  4. only density or only mass pinned and a mesh is available: volume
//     comes from the mesh, then rule 1 or 2.
//
// Mass is authoritative whenever it is pinned.
func Reconcile(in Inputs, meshVolume VolumeFunc) (Result, error) {
	switch {
	case in.Volume != nil && in.Mass != nil:
		r, err := densityFrom(*in.Volume, *in.Mass)
		if err != nil {
			return r, err
		}
		if in.Density != nil {
			r.Conflict = !approxEqual(*in.Density, r.Density)
		}
		return r, nil

	case in.Volume != nil && in.Density != nil:
		return massFrom(*in.Volume, *in.Density), nil

	case in.Density != nil && in.Mass != nil:
		if *in.Density == 0 {
			return Result{}, fmt.Errorf("%w: density is 0", ErrZeroDivisor)
		}
		return Result{
			Volume:  *in.Mass / *in.Density,
			Density: *in.Density,
			Mass:    *in.Mass,
			Rule:    RuleVolumeFromDensityMass,
		}, nil
	}

	if meshVolume == nil || (in.Density == nil && in.Mass == nil) {
		return Result{}, ErrUnderdetermined
	}
	v, err := meshVolume()
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: mesh volume: %w", err)
	}
	v = math.Abs(v)

	var r Result
	if in.Mass != nil {
		r, err = densityFrom(v, *in.Mass)
		if err != nil {
			return r, err
		}
	} else {
		r = massFrom(v, *in.Density)
	}
	r.VolumeFromMesh = true
	return r, nil
}

func densityFrom(volume, mass float64) (Result, error) {
	if volume == 0 {
		return Result{}, fmt.Errorf("%w: volume is 0", ErrZeroDivisor)
	}
	return Result{
		Volume:  volume,
		Density: mass / volume,
		Mass:    mass,
		Rule:    RuleDensityFromVolumeMass,
	}, nil
}

func massFrom(volume, density float64) Result {
	return Result{
		Volume:  volume,
		Density: density,
		Mass:    volume * density,
		Rule:    RuleMassFromVolumeDensity,
	}
}

func approxEqual(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= conflictTolerance*math.Max(scale, 1)
}
