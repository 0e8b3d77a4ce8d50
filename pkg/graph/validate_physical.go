package graph

import "fmt"

// ---------------------------------------------------------------------------
// Physical validation (errors + warnings)
// ---------------------------------------------------------------------------

// validatePhysical checks geometry and pinned physical values of links.
// Returns errors (blocking) and warnings (advisory) separately.
func validatePhysical(g *Graph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Links() {
		ld, ok := node.Data.(LinkData)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("link has unexpected data type %T", node.Data),
				Severity: SeverityError,
			})
			continue
		}
		errs = append(errs, validateShape(node.ID, ld)...)
		errs = append(errs, validatePinned(node.ID, ld)...)
		warnings = append(warnings, linkWarnings(node, ld)...)
	}

	return errs, warnings
}

// validateShape checks that a link names exactly one geometry source and
// that primitive dimensions are positive.
func validateShape(id NodeID, ld LinkData) []ValidationError {
	var errs []ValidationError
	if ld.Mesh != "" && ld.Shape.Kind != ShapeNone {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("link has both mesh %q and a %s shape", ld.Mesh, ld.Shape.Kind),
			Severity: SeverityError,
		})
	}

	positive := func(what string, v float64) {
		if v <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s %s is %.4f, must be positive", ld.Shape.Kind, what, v),
				Severity: SeverityError,
			})
		}
	}
	switch ld.Shape.Kind {
	case ShapeBox:
		positive("size X", ld.Shape.Size[0])
		positive("size Y", ld.Shape.Size[1])
		positive("size Z", ld.Shape.Size[2])
	case ShapeCylinder:
		positive("radius", ld.Shape.Radius)
		positive("length", ld.Shape.Length)
	case ShapeSphere:
		positive("radius", ld.Shape.Radius)
	}
	return errs
}

// validatePinned rejects negative pinned values and a zero pinned volume or
// density, which reconciliation would divide by.
func validatePinned(id NodeID, ld LinkData) []ValidationError {
	var errs []ValidationError
	check := func(what string, v *float64, allowZero bool) {
		if v == nil {
			return
		}
		if *v < 0 || (!allowZero && *v == 0) {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("pinned %s is %g", what, *v),
				Severity: SeverityError,
			})
		}
	}
	check("mass", ld.Mass, true)
	check("density", ld.Density, false)
	check("volume", ld.Volume, false)
	return errs
}

// linkWarnings reports links that cannot yield a full set of mass
// properties.
func linkWarnings(node *Node, ld LinkData) []ValidationWarning {
	var warnings []ValidationWarning
	if ld.Mass == nil && ld.Density == nil {
		warnings = append(warnings, ValidationWarning{
			NodeID:  node.ID,
			Message: fmt.Sprintf("link %q has neither mass nor density", node.Name),
		})
	}
	if !ld.HasGeometry() {
		warnings = append(warnings, ValidationWarning{
			NodeID:  node.ID,
			Message: fmt.Sprintf("link %q has no geometry; inertia will be zero", node.Name),
		})
	}
	return warnings
}
