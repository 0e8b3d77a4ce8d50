package part

import (
	"testing"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMassOnlyUsesMeshVolume(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())
	box := kernel.Box(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 2, 2})

	res, err := Compute(e, Request{
		Source: box,
		Pinned: reconcile.Inputs{Mass: reconcile.Ptr(16)},
	})
	require.NoError(t, err)
	assert.True(t, res.Reconciled.VolumeFromMesh)
	assert.InDelta(t, 8.0, res.Properties.Volume, 1e-9)
	assert.InDelta(t, 2.0, res.Properties.Density, 1e-9)
	assert.True(t, res.Properties.CenterOfMass.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9))
	// m/12 (b²+c²) = 16/12 * 8
	assert.InDelta(t, 16.0/12*8, res.Properties.Inertia.Ixx(), 1e-9)
	assert.Empty(t, res.Properties.Diagnostics)
}

func TestComputeInertiaFollowsReconciledDensity(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())
	box := kernel.Box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})

	// Pinned volume disagrees with the mesh; the pinned pair wins and the
	// tensor scales with the reconciled density.
	res, err := Compute(e, Request{
		Source: box,
		Pinned: reconcile.Inputs{Volume: reconcile.Ptr(2), Mass: reconcile.Ptr(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Properties.Density)
	assert.InDelta(t, 2.0/6, res.Properties.Inertia.Izz(), 1e-9)
}

func TestComputeCenterOfMassOverride(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())
	com := mgl64.Vec3{0.5, 0, 0}
	res, err := Compute(e, Request{
		Source:       kernel.Box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}),
		Pinned:       reconcile.Inputs{Density: reconcile.Ptr(1)},
		CenterOfMass: &com,
	})
	require.NoError(t, err)
	assert.Equal(t, com, res.Properties.CenterOfMass)
	assert.InDelta(t, 1.0/6+0.25, res.Properties.Inertia.Iyy(), 1e-9)
}

func TestComputeWithoutMesh(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())

	res, err := Compute(e, Request{
		Pinned: reconcile.Inputs{Volume: reconcile.Ptr(2), Density: reconcile.Ptr(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Properties.Mass)
	assert.Equal(t, massprop.Tensor{}, res.Properties.Inertia)
	assert.True(t, res.Properties.Diagnostics.Has(massprop.KindMissingInput))

	_, err = Compute(e, Request{Pinned: reconcile.Inputs{Mass: reconcile.Ptr(1)}})
	assert.ErrorIs(t, err, reconcile.ErrUnderdetermined)
}

func TestComputeKeepsSignedMeshVolume(t *testing.T) {
	e := massprop.New(massprop.DefaultConfig())
	box := kernel.Box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	inverted := make(kernel.Triangles, len(box))
	for i, tri := range box {
		inverted[i] = tri.Reversed()
	}

	res, err := Compute(e, Request{
		Source: inverted,
		Pinned: reconcile.Inputs{Density: reconcile.Ptr(1)},
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.Properties.SignedVolume, 1e-9)
	assert.InDelta(t, 1.0, res.Properties.Volume, 1e-9)
	assert.InDelta(t, 1.0, res.Properties.Mass, 1e-9)
	assert.True(t, res.Properties.Diagnostics.Has(massprop.KindInvertedWinding))

	// A pinned volume has no winding to report.
	res, err = Compute(e, Request{
		Source: inverted,
		Pinned: reconcile.Inputs{Volume: reconcile.Ptr(2), Density: reconcile.Ptr(1)},
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Properties.SignedVolume, 1e-9)
}
