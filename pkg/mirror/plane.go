// Package mirror produces the mirror-image counterpart of a part: the
// reflected, re-wound surface, its reflected center of mass, and an inertia
// tensor recomputed from that geometry.
package mirror

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is a mirror plane through the origin, identified by the axis it
// negates.
type Plane int

const (
	PlaneYZ Plane = iota // x -> -x
	PlaneXZ              // y -> -y, left/right for a Y-lateral robot
	PlaneXY              // z -> -z
)

// ParsePlane accepts a plane name ("xz") or the axis it negates ("y").
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yz", "zy", "x":
		return PlaneYZ, nil
	case "xz", "zx", "y", "":
		return PlaneXZ, nil
	case "xy", "yx", "z":
		return PlaneXY, nil
	}
	return PlaneXZ, fmt.Errorf("mirror: unknown plane %q", s)
}

// Axis returns the index of the coordinate the plane negates.
func (p Plane) Axis() int {
	switch p {
	case PlaneYZ:
		return 0
	case PlaneXY:
		return 2
	default:
		return 1
	}
}

func (p Plane) String() string {
	switch p {
	case PlaneYZ:
		return "yz"
	case PlaneXY:
		return "xy"
	default:
		return "xz"
	}
}

// Reflect negates the plane-normal coordinate of v.
func (p Plane) Reflect(v mgl64.Vec3) mgl64.Vec3 {
	v[p.Axis()] = -v[p.Axis()]
	return v
}
