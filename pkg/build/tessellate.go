package build

import (
	"fmt"

	"github.com/chazu/urdfkit/pkg/graph"
	"github.com/chazu/urdfkit/pkg/kernel"
)

// CylinderSegments is the facet count requested for cylinders.
const CylinderSegments = 32

// Tessellate meshes a primitive shape with k. The solid is centered on the
// link origin, matching the URDF primitive geometry.
func Tessellate(k kernel.Kernel, name string, sh graph.Shape) (*kernel.Mesh, error) {
	var solid kernel.Solid

	switch sh.Kind {
	case graph.ShapeBox:
		solid = k.Box(sh.Size[0], sh.Size[1], sh.Size[2])
	case graph.ShapeCylinder:
		solid = k.Cylinder(sh.Length, sh.Radius, CylinderSegments)
	case graph.ShapeSphere:
		solid = k.Sphere(sh.Radius)
	default:
		return nil, fmt.Errorf("tessellate: %s: unsupported shape %s", name, sh.Kind)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
	}
	mesh.PartName = name
	return mesh, nil
}
