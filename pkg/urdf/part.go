package urdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/go-gl/mathgl/mgl64"
)

// Part is the per-part document written next to each mesh.
type Part struct {
	XMLName  xml.Name  `xml:"urdf_part"`
	Material Material  `xml:"material"`
	Link     PartLink  `xml:"link"`
	Points   []Point   `xml:"point"`
	Joint    PartJoint `xml:"joint"`
}

// Material is a named display color.
type Material struct {
	Name  string `xml:"name,attr"`
	Color *Color `xml:"color,omitempty"`
}

// Color is an "r g b a" string.
type Color struct {
	RGBA string `xml:"rgba,attr"`
}

// MaterialRef refers to a material by name.
type MaterialRef struct {
	Name string `xml:"name,attr"`
}

// Origin is a pose; RPY is omitted when empty.
type Origin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr,omitempty"`
}

// Value is an element carrying a single value attribute.
type Value struct {
	Value string `xml:"value,attr"`
}

// Inertia holds the six tensor attributes as written.
type Inertia struct {
	Ixx string `xml:"ixx,attr"`
	Ixy string `xml:"ixy,attr"`
	Ixz string `xml:"ixz,attr"`
	Iyy string `xml:"iyy,attr"`
	Iyz string `xml:"iyz,attr"`
	Izz string `xml:"izz,attr"`
}

// NewInertia formats t with FormatInertia precision.
func NewInertia(t massprop.Tensor) *Inertia {
	return &Inertia{
		Ixx: formatInertiaValue(t.Ixx()),
		Ixy: formatInertiaValue(t.Ixy()),
		Ixz: formatInertiaValue(t.Ixz()),
		Iyy: formatInertiaValue(t.Iyy()),
		Iyz: formatInertiaValue(t.Iyz()),
		Izz: formatInertiaValue(t.Izz()),
	}
}

// Tensor parses the attributes back into a tensor.
func (in *Inertia) Tensor() (massprop.Tensor, error) {
	raw := [6]string{in.Ixx, in.Ixy, in.Ixz, in.Iyy, in.Iyz, in.Izz}
	var v [6]float64
	for i, s := range raw {
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return massprop.Tensor{}, fmt.Errorf("urdf: inertia attribute %d: %w", i, err)
		}
		v[i] = x
	}
	return massprop.NewTensor(v[0], v[1], v[2], v[3], v[4], v[5]), nil
}

// PartLink is the link element of a part document.
type PartLink struct {
	Name         string        `xml:"name,attr"`
	Visual       *PartVisual   `xml:"visual,omitempty"`
	Inertial     *PartInertial `xml:"inertial,omitempty"`
	CenterOfMass string        `xml:"center_of_mass,omitempty"`
}

// PartVisual is the visual element of a part document.
type PartVisual struct {
	Origin   *Origin      `xml:"origin,omitempty"`
	Material *MaterialRef `xml:"material,omitempty"`
}

// PartInertial is the inertial element of a part document.
type PartInertial struct {
	Origin  *Origin  `xml:"origin,omitempty"`
	Mass    *Value   `xml:"mass,omitempty"`
	Volume  *Value   `xml:"volume,omitempty"`
	Inertia *Inertia `xml:"inertia,omitempty"`
}

// Point is a named attachment point in the part frame.
type Point struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	XYZ  string `xml:"point_xyz"`
}

// PartJoint carries the rotation axis the part is meant to move about.
type PartJoint struct {
	Axis *Axis `xml:"axis,omitempty"`
}

// Axis is an "x y z" direction.
type Axis struct {
	XYZ string `xml:"xyz,attr"`
}

// NamedPoint is an attachment point in numeric form.
type NamedPoint struct {
	Name string
	XYZ  mgl64.Vec3
}

// PartSpec is the numeric content of a part document.
type PartSpec struct {
	Name         string
	Color        mgl64.Vec3 // 0..1 RGB
	Mass         float64
	Volume       float64
	CenterOfMass mgl64.Vec3
	Inertia      massprop.Tensor
	Points       []NamedPoint
	Axis         mgl64.Vec3
}

// HexColor renders an RGB triple as #RRGGBB.
func HexColor(rgb mgl64.Vec3) string {
	c := func(x float64) int {
		return int(min(max(x, 0), 1) * 255)
	}
	return fmt.Sprintf("#%02X%02X%02X", c(rgb[0]), c(rgb[1]), c(rgb[2]))
}

// ParseHexColor parses #RRGGBB into 0..1 components.
func ParseHexColor(s string) (mgl64.Vec3, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "#%02x%02x%02x", &r, &g, &b); err != nil {
		return mgl64.Vec3{}, fmt.Errorf("urdf: bad color %q: %w", s, err)
	}
	return mgl64.Vec3{float64(r) / 255, float64(g) / 255, float64(b) / 255}, nil
}

// NewPart builds a part document from numeric values.
func (f Formatter) NewPart(spec PartSpec) *Part {
	hex := HexColor(spec.Color)
	com := f.Vec3(spec.CenterOfMass)
	p := &Part{
		Material: Material{
			Name:  hex,
			Color: &Color{RGBA: f.Vec3(spec.Color) + " 1.0"},
		},
		Link: PartLink{
			Name: spec.Name,
			Visual: &PartVisual{
				Origin:   &Origin{XYZ: com, RPY: "0 0 0"},
				Material: &MaterialRef{Name: hex},
			},
			Inertial: &PartInertial{
				Origin:  &Origin{XYZ: com},
				Mass:    &Value{Value: f.Scalar(spec.Mass)},
				Volume:  &Value{Value: f.Scalar(spec.Volume)},
				Inertia: NewInertia(spec.Inertia),
			},
			CenterOfMass: com,
		},
		Joint: PartJoint{Axis: &Axis{XYZ: FormatAxis(spec.Axis)}},
	}
	for _, pt := range spec.Points {
		p.Points = append(p.Points, Point{Name: pt.Name, Type: "fixed", XYZ: f.Vec3(pt.XYZ)})
	}
	return p
}

// FormatAxis renders a joint axis with one decimal per component.
func FormatAxis(v mgl64.Vec3) string {
	return fmt.Sprintf("%.1f %.1f %.1f", v[0]+0, v[1]+0, v[2]+0)
}

// ErrMissingValue is returned when a part document lacks a required value.
var ErrMissingValue = errors.New("urdf: missing value")

// PartValues is the numeric content read back from a part document.
type PartValues struct {
	Name         string
	Mass         *float64
	Volume       *float64
	CenterOfMass *mgl64.Vec3
	Inertia      *massprop.Tensor
	Points       []NamedPoint
	Axis         *mgl64.Vec3
	Color        *mgl64.Vec3
}

// Values parses the numeric content. Absent elements are left nil. The
// center of mass is taken from <center_of_mass>, falling back to the
// inertial origin and then to the visual origin.
func (p *Part) Values() (PartValues, error) {
	out := PartValues{Name: p.Link.Name}
	if in := p.Link.Inertial; in != nil {
		if in.Mass != nil {
			v, err := parseScalar("mass", in.Mass.Value)
			if err != nil {
				return out, err
			}
			out.Mass = &v
		}
		if in.Volume != nil {
			v, err := parseScalar("volume", in.Volume.Value)
			if err != nil {
				return out, err
			}
			out.Volume = &v
		}
		if in.Inertia != nil {
			t, err := in.Inertia.Tensor()
			if err != nil {
				return out, err
			}
			out.Inertia = &t
		}
	}

	for _, src := range p.comSources() {
		if strings.TrimSpace(src) == "" {
			continue
		}
		v, err := ParseVec3(src)
		if err != nil {
			return out, fmt.Errorf("urdf: center of mass: %w", err)
		}
		out.CenterOfMass = &v
		break
	}

	for _, pt := range p.Points {
		v, err := ParseVec3(pt.XYZ)
		if err != nil {
			return out, fmt.Errorf("urdf: point %q: %w", pt.Name, err)
		}
		out.Points = append(out.Points, NamedPoint{Name: pt.Name, XYZ: v})
	}
	if p.Joint.Axis != nil {
		v, err := ParseVec3(p.Joint.Axis.XYZ)
		if err != nil {
			return out, fmt.Errorf("urdf: joint axis: %w", err)
		}
		out.Axis = &v
	}
	if p.Material.Name != "" {
		if c, err := ParseHexColor(p.Material.Name); err == nil {
			out.Color = &c
		}
	}
	return out, nil
}

func (p *Part) comSources() []string {
	srcs := []string{p.Link.CenterOfMass}
	if in := p.Link.Inertial; in != nil && in.Origin != nil {
		srcs = append(srcs, in.Origin.XYZ)
	}
	if vis := p.Link.Visual; vis != nil && vis.Origin != nil {
		srcs = append(srcs, vis.Origin.XYZ)
	}
	return srcs
}

func parseScalar(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("urdf: %s: %w", field, err)
	}
	return v, nil
}

// Encode writes the document with an XML declaration and indentation.
func (p *Part) Encode(w io.Writer) error {
	return encodeDocument(w, p)
}

// DecodePart reads a part document.
func DecodePart(r io.Reader) (*Part, error) {
	var p Part
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("urdf: decode part: %w", err)
	}
	return &p, nil
}

// ReadPartFile reads a part document from path.
func ReadPartFile(path string) (*Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := DecodePart(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WritePartFile writes a part document to path.
func WritePartFile(path string, p *Part) error {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func encodeDocument(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("urdf: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
