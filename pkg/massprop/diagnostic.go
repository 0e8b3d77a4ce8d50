package massprop

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	KindEmptyMesh Kind = iota
	KindNonTriangle
	KindNonFinite
	KindDegenerate
	KindInvertedWinding
	KindZeroVolume
	KindNonPositiveDiagonal
	KindMissingInput
	KindNonPhysicalInertia
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEmptyMesh:
		return "empty-mesh"
	case KindNonTriangle:
		return "non-triangle-cell"
	case KindNonFinite:
		return "non-finite-vertex"
	case KindDegenerate:
		return "degenerate-triangle"
	case KindInvertedWinding:
		return "inverted-winding"
	case KindZeroVolume:
		return "zero-volume"
	case KindNonPositiveDiagonal:
		return "non-positive-diagonal"
	case KindMissingInput:
		return "missing-input"
	case KindNonPhysicalInertia:
		return "non-physical-inertia"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Severity indicates whether a diagnostic affects the trustworthiness of
// the result.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

// String returns a human-readable name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Axis names for tensor diagnostics.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Diagnostic records one recoverable anomaly. Cell is the index of the
// offending cell in the source order and Axis the offending tensor axis;
// either is -1 when it does not apply.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Cell     int
	Axis     int
	Value    float64
}

func cellDiag(kind Kind, sev Severity, cell int) Diagnostic {
	return Diagnostic{Kind: kind, Severity: sev, Cell: cell, Axis: -1}
}

func axisDiag(kind Kind, sev Severity, axis int, value float64) Diagnostic {
	return Diagnostic{Kind: kind, Severity: sev, Cell: -1, Axis: axis, Value: value}
}

func valueDiag(kind Kind, sev Severity, value float64) Diagnostic {
	return Diagnostic{Kind: kind, Severity: sev, Cell: -1, Axis: -1, Value: value}
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Kind)
	if d.Cell >= 0 {
		fmt.Fprintf(&b, " cell=%d", d.Cell)
	}
	if d.Axis >= 0 {
		fmt.Fprintf(&b, " axis=%c", "xyz"[d.Axis])
	}
	if d.Value != 0 {
		fmt.Fprintf(&b, " value=%g", d.Value)
	}
	return b.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Has reports whether any diagnostic has the given kind.
func (ds Diagnostics) Has(kind Kind) bool {
	return ds.Count(kind) > 0
}

// Count returns the number of diagnostics of the given kind.
func (ds Diagnostics) Count(kind Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Warnings returns only the warning-severity diagnostics.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends other, dropping cell diagnostics already present so that
// the same skipped cell is not reported once per operation.
func (ds Diagnostics) Merge(other Diagnostics) Diagnostics {
	type key struct {
		kind Kind
		cell int
		axis int
	}
	seen := make(map[key]bool, len(ds))
	for _, d := range ds {
		seen[key{d.Kind, d.Cell, d.Axis}] = true
	}
	for _, d := range other {
		k := key{d.Kind, d.Cell, d.Axis}
		if seen[k] {
			continue
		}
		seen[k] = true
		ds = append(ds, d)
	}
	return ds
}
