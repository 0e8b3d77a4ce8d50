// Package urdf renders mass properties as URDF text and reads and writes
// the per-part XML documents and assembled robot descriptions.
package urdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/go-gl/mathgl/mgl64"
)

// InertiaZero is the magnitude below which an inertia entry is written as 0.
const InertiaZero = 1e-10

// DefaultDigits is the number of significant digits used for scalars.
const DefaultDigits = 9

// FormatInertia renders the six independent tensor entries as URDF
// attributes in the fixed order ixx ixy ixz iyy iyz izz, each with eight
// decimal places.
func FormatInertia(t massprop.Tensor) string {
	vals := [6]float64{t.Ixx(), t.Ixy(), t.Ixz(), t.Iyy(), t.Iyz(), t.Izz()}
	names := [6]string{"ixx", "ixy", "ixz", "iyy", "iyz", "izz"}
	parts := make([]string, 6)
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%s=%q", names[i], formatInertiaValue(v))
	}
	return strings.Join(parts, " ")
}

// InertiaElement wraps FormatInertia in an <inertia/> element.
func InertiaElement(t massprop.Tensor) string {
	return "<inertia " + FormatInertia(t) + "/>"
}

func formatInertiaValue(v float64) string {
	if math.Abs(v) < InertiaZero {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 8, 64)
}

// Formatter renders scalars with a fixed number of significant digits.
type Formatter struct {
	Digits int
}

// DefaultFormatter uses DefaultDigits.
var DefaultFormatter = Formatter{Digits: DefaultDigits}

// Scalar formats v. Negative zero is written as 0.
func (f Formatter) Scalar(v float64) string {
	d := f.Digits
	if d <= 0 {
		d = DefaultDigits
	}
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', d, 64)
}

// Vec3 formats v as three space-separated scalars.
func (f Formatter) Vec3(v mgl64.Vec3) string {
	return f.Scalar(v[0]) + " " + f.Scalar(v[1]) + " " + f.Scalar(v[2])
}

// FormatScalar formats v with DefaultFormatter.
func FormatScalar(v float64) string {
	return DefaultFormatter.Scalar(v)
}

// FormatVec3 formats v with DefaultFormatter.
func FormatVec3(v mgl64.Vec3) string {
	return DefaultFormatter.Vec3(v)
}

// ParseVec3 parses three whitespace-separated numbers.
func ParseVec3(s string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return v, fmt.Errorf("urdf: want 3 components, got %d in %q", len(fields), s)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, fmt.Errorf("urdf: component %d of %q: %w", i, s, err)
		}
		v[i] = x
	}
	return v, nil
}
