package graph

import (
	"fmt"
	"sort"

	"github.com/chazu/urdfkit/pkg/mirror"
)

// ValidationSeverity indicates whether a validation finding blocks the build
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks on the graph and returns its
// findings. An empty slice means the graph is valid. Validate never
// mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateJoints(g)...)
	sortFindings(errs)
	return errs
}

// ValidateAll runs the structural checks and the physical checks and
// separates errors from warnings.
func ValidateAll(g *Graph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	physErrs, physWarnings := validatePhysical(g)
	result.Errors = append(result.Errors, physErrs...)
	result.Warnings = append(result.Warnings, physWarnings...)
	return result
}

// sortFindings orders findings by severity, node, then message so repeated
// validation of the same graph reports identically.
func sortFindings(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Severity != errs[j].Severity {
			return errs[i].Severity < errs[j].Severity
		}
		if errs[i].NodeID != errs[j].NodeID {
			return errs[i].NodeID < errs[j].NodeID
		}
		return errs[i].Message < errs[j].Message
	})
}

// edges returns the outgoing references of a node: children, a mirror's
// source, and a joint's parent-to-child link.
func edges(n *Node) []NodeID {
	out := append([]NodeID(nil), n.Children...)
	switch d := n.Data.(type) {
	case MirrorData:
		out = append(out, d.Source)
	case JointData:
		out = append(out, d.Child)
	}
	return out
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// Joints add a parent -> child edge so that kinematic loops are cycles.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	// Kinematic edges: parent link -> child link.
	kin := make(map[NodeID][]NodeID)
	for _, n := range g.Nodes {
		if jd, ok := n.Data.(JointData); ok {
			kin[jd.Parent] = append(kin[jd.Parent], jd.Child)
		}
	}

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		next := edges(node)
		if node.Kind.IsLink() {
			next = append(next, kin[id]...)
		}
		for _, childID := range next {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Start DFS from every node to catch disconnected components.
	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the
// graph points to an existing node of a suitable kind.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError

	linkRef := func(node *Node, field string, id NodeID, allowBase bool) {
		if id.IsZero() {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s %s is not set", node.Kind, field),
				Severity: SeverityError,
			})
			return
		}
		if id == BaseID {
			if !allowBase {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s %s cannot be %s", node.Kind, field, BaseLinkName),
					Severity: SeverityError,
				})
			}
			return
		}
		target, ok := g.Nodes[id]
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s %s reference %s does not exist", node.Kind, field, id.Short()),
				Severity: SeverityError,
			})
			return
		}
		if !target.Kind.IsLink() {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s %s %s is %s, not a link", node.Kind, field, id.Short(), target.Kind),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		switch d := node.Data.(type) {
		case MirrorData:
			linkRef(node, "source", d.Source, false)
		case JointData:
			linkRef(node, "parent", d.Parent, true)
			linkRef(node, "child", d.Child, false)
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective, that every link,
// mirror and robot is named, and that nothing claims the base link name.
func validateNames(g *Graph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
			if node.Name == BaseLinkName {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("name %q is reserved", BaseLinkName),
					Severity: SeverityError,
				})
			}
			continue
		}
		if node.Kind != NodeJoint {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s has no name", node.Kind),
				Severity: SeverityError,
			})
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that a non-empty graph has exactly one robot root
// and warns about nodes unreachable from it.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError

	if len(g.Nodes) == 0 {
		return errs
	}

	robots := 0
	for _, rid := range g.Roots {
		n, ok := g.Nodes[rid]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if n.Kind != NodeRobot {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root %s is %s, not robot", rid.Short(), n.Kind),
				Severity: SeverityError,
			})
			continue
		}
		robots++
	}
	switch {
	case robots == 0:
		errs = append(errs, ValidationError{
			Message:  "graph has no robot root",
			Severity: SeverityError,
		})
	case robots > 1:
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("graph has %d robot roots, want 1", robots),
			Severity: SeverityError,
		})
	}

	// Orphan detection: BFS from all roots through every reference.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		next := edges(node)
		if jd, ok := node.Data.(JointData); ok {
			next = append(next, jd.Parent)
		}
		for _, id := range next {
			if !reachable[id] {
				reachable[id] = true
				queue = append(queue, id)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from the robot root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateJoints checks that each link has at most one parent joint, that
// no joint connects a link to itself, that a named parent point exists, and
// that moving joints have an axis.
func validateJoints(g *Graph) []ValidationError {
	var errs []ValidationError

	parents := make(map[NodeID]int)
	for _, node := range g.Nodes {
		jd, ok := node.Data.(JointData)
		if !ok {
			continue
		}
		parents[jd.Child]++

		if jd.Parent == jd.Child {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "joint connects a link to itself",
				Severity: SeverityError,
			})
		}
		if jd.Type.Moves() && jd.Axis.Len() == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s joint has a zero axis", jd.Type),
				Severity: SeverityError,
			})
		}
		if jd.Limit != nil && jd.Limit.Lower > jd.Limit.Upper {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("joint limit lower %g exceeds upper %g", jd.Limit.Lower, jd.Limit.Upper),
				Severity: SeverityError,
			})
		}
		if jd.ParentPoint != "" {
			if _, ok := pointOf(g, jd.Parent, jd.ParentPoint); !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("parent %s has no point %q", g.NameOf(jd.Parent), jd.ParentPoint),
					Severity: SeverityError,
				})
			}
		}
	}

	for child, n := range parents {
		if n > 1 {
			errs = append(errs, ValidationError{
				NodeID:   child,
				Message:  fmt.Sprintf("link %s has %d parent joints, want at most 1", g.NameOf(child), n),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// PointOf resolves a named attachment point of a link or mirrored link.
// Mirrored links reflect their source's points.
func PointOf(g *Graph, id NodeID, name string) (Point, bool) {
	return pointOf(g, id, name)
}

func pointOf(g *Graph, id NodeID, name string) (Point, bool) {
	var planes []mirror.Plane
	// Bounded walk: a mirror cycle is reported by validateDAG.
	for range len(g.Nodes) + 1 {
		n := g.Nodes[id]
		if n == nil {
			return Point{}, false
		}
		switch d := n.Data.(type) {
		case LinkData:
			p, ok := d.Point(name)
			for _, pl := range planes {
				p.XYZ = pl.Reflect(p.XYZ)
			}
			return p, ok
		case MirrorData:
			planes = append(planes, d.Plane)
			id = d.Source
		default:
			return Point{}, false
		}
	}
	return Point{}, false
}
