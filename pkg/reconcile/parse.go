package reconcile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidInput is wrapped by every InputError.
var ErrInvalidInput = errors.New("invalid input")

var (
	errNotFinite   = errors.New("not a finite number")
	errNotPositive = errors.New("must be greater than zero")
)

// InputError names a field whose text is not a usable number.
type InputError struct {
	Field string
	Text  string
	Err   error
}

func (e *InputError) Error() string {
	var ne *strconv.NumError
	if errors.As(e.Err, &ne) {
		return fmt.Sprintf("reconcile: %s: %q is not a number", e.Field, e.Text)
	}
	return fmt.Sprintf("reconcile: %s: %q: %v", e.Field, e.Text, e.Err)
}

// Is reports ErrInvalidInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Field is a text entry and whether the user pinned it.
type Field struct {
	Text   string
	Pinned bool
}

// ParseInputs converts the pinned fields to Inputs. Unpinned fields are
// ignored whatever their text; pinned ones must be finite and positive.
func ParseInputs(volume, density, mass Field) (Inputs, error) {
	var in Inputs
	var err error
	if in.Volume, err = parseField("volume", volume); err != nil {
		return in, err
	}
	if in.Density, err = parseField("density", density); err != nil {
		return in, err
	}
	if in.Mass, err = parseField("mass", mass); err != nil {
		return in, err
	}
	return in, nil
}

func parseField(name string, f Field) (*float64, error) {
	if !f.Pinned {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Text), 64)
	switch {
	case err != nil:
		return nil, &InputError{Field: name, Text: f.Text, Err: err}
	case math.IsNaN(v) || math.IsInf(v, 0):
		return nil, &InputError{Field: name, Text: f.Text, Err: errNotFinite}
	case v <= 0:
		return nil, &InputError{Field: name, Text: f.Text, Err: errNotPositive}
	}
	return &v, nil
}

// ParseVec3 accepts "(x, y, z)", "x, y, z" or "x y z".
func ParseVec3(s string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	trimmed := strings.Trim(strings.TrimSpace(s), "()")
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(parts) != 3 {
		return v, &InputError{Field: "center of mass", Text: s, Err: fmt.Errorf("want 3 coordinates, got %d", len(parts))}
	}
	for i, p := range parts {
		x, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return v, &InputError{Field: "center of mass", Text: s, Err: err}
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, &InputError{Field: "center of mass", Text: s, Err: errNotFinite}
		}
		v[i] = x
	}
	return v, nil
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}
