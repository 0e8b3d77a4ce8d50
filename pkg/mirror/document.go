package mirror

import (
	"fmt"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/jinzhu/copier"
)

// Document returns a mirrored copy of doc named name. The center of mass,
// mass, volume and inertia come from props; attachment points are
// reflected; the joint axis is carried over unchanged. doc is not
// modified.
func Document(doc *urdf.Part, name string, plane Plane, props massprop.Properties, f urdf.Formatter) (*urdf.Part, error) {
	var out urdf.Part
	if err := copier.CopyWithOption(&out, doc, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("mirror: copy document: %w", err)
	}

	com := f.Vec3(props.CenterOfMass)
	out.Link.Name = name
	out.Link.CenterOfMass = com
	if out.Link.Visual == nil {
		out.Link.Visual = &urdf.PartVisual{}
	}
	out.Link.Visual.Origin = &urdf.Origin{XYZ: com, RPY: "0 0 0"}
	if out.Link.Inertial == nil {
		out.Link.Inertial = &urdf.PartInertial{}
	}
	out.Link.Inertial.Origin = &urdf.Origin{XYZ: com}
	out.Link.Inertial.Mass = &urdf.Value{Value: f.Scalar(props.Mass)}
	out.Link.Inertial.Volume = &urdf.Value{Value: f.Scalar(props.Volume)}
	out.Link.Inertial.Inertia = urdf.NewInertia(props.Inertia)

	for i, pt := range out.Points {
		v, err := urdf.ParseVec3(pt.XYZ)
		if err != nil {
			return nil, fmt.Errorf("mirror: point %q: %w", pt.Name, err)
		}
		out.Points[i].XYZ = f.Vec3(plane.Reflect(v))
	}
	if out.Joint.Axis != nil {
		v, err := urdf.ParseVec3(out.Joint.Axis.XYZ)
		if err != nil {
			return nil, fmt.Errorf("mirror: joint axis: %w", err)
		}
		out.Joint.Axis.XYZ = urdf.FormatAxis(v)
	}
	return &out, nil
}
