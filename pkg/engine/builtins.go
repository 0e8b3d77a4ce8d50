package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/urdfkit/pkg/graph"
	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/chazu/urdfkit/pkg/urdf"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms recipe source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: link-ref -> link_ref
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a graph.Shape returned from box, cylinder and sphere.
type sexpShape struct {
	shape graph.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch s.shape.Kind {
	case graph.ShapeBox:
		v := s.shape.Size
		return fmt.Sprintf("(box %gx%gx%g)", v[0], v[1], v[2])
	case graph.ShapeCylinder:
		return fmt.Sprintf("(cylinder r=%g l=%g)", s.shape.Radius, s.shape.Length)
	default:
		return fmt.Sprintf("(sphere r=%g)", s.shape.Radius)
	}
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpPoint wraps a named attachment point.
type sexpPoint struct {
	point graph.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	v := p.point.XYZ
	return fmt.Sprintf("(point %q %g %g %g)", p.point.Name, v[0], v[1], v[2])
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float reads an optional numeric keyword into *dst.
func (a kwArgs) float(key string, dst **float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = &f
	return nil
}

// vec reads an optional vec3 keyword into *dst.
func (a kwArgs) vec(key string, dst **mgl64.Vec3) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = &vec
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_xz) and plain strings ("xz").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPlane converts a keyword or string to a mirror.Plane.
func toPlane(s zygo.Sexp) (mirror.Plane, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return mirror.PlaneXZ, fmt.Errorf("expected plane keyword (:xz, :yz, :xy): %w", err)
	}
	return mirror.ParsePlane(name)
}

// toJointType converts a keyword or string to a graph.JointType.
func toJointType(s zygo.Sexp) (graph.JointType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return graph.JointFixed, fmt.Errorf("expected joint type keyword: %w", err)
	}
	return graph.ParseJointType(name)
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a Shape from a sexpShape.
func toShape(s zygo.Sexp) (graph.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return graph.Shape{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// nodeRefs flattens node references and lists of node references.
func nodeRefs(args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, arg := range args {
		if ref, ok := arg.(*sexpNodeRef); ok {
			ids = append(ids, ref.id)
			continue
		}
		items, err := sexpListToSlice(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: expected node reference, got %T (%s)", i, arg, arg.SexpString(nil))
		}
		nested, err := nodeRefs(items)
		if err != nil {
			return nil, err
		}
		ids = append(ids, nested...)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the recipe builtins into a zygomys environment.
// The builtins operate on the provided Graph, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.Graph) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var v mgl64.Vec3
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 0.1 0.2 0.3))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		return &sexpShape{shape: graph.Shape{Kind: graph.ShapeBox, Size: size}}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 0.02 :length 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sh := graph.Shape{Kind: graph.ShapeCylinder}
		for key, dst := range map[string]*float64{"radius": &sh.Radius, "length": &sh.Length} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder requires :%s", key)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s: %w", key, err)
			}
			*dst = f
		}
		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires :radius")
		}
		r, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		return &sexpShape{shape: graph.Shape{Kind: graph.ShapeSphere, Radius: r}}, nil
	})

	// -----------------------------------------------------------------------
	// (point "wrist" (vec3 0.1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("point requires a name and a vec3")
		}
		pname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: name: %w", err)
		}
		xyz, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		return &sexpPoint{point: graph.Point{Name: pname, XYZ: xyz}}, nil
	})

	// -----------------------------------------------------------------------
	// (link "L_arm" :mesh "L_arm.stl" :mass 0.5 :com (vec3 0 0 0)
	//       :points (list (point "wrist" (vec3 0.1 0 0))) :axis (vec3 0 0 1))
	// (link "torso" :shape (box :size (vec3 0.2 0.3 0.4)) :density 1000)
	// -----------------------------------------------------------------------
	env.AddFunction("link", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("link requires a name argument")
		}
		linkName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: name: %w", err)
		}

		var ld graph.LinkData
		if v, ok := pa.kw["mesh"]; ok {
			if ld.Mesh, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("link %s: mesh: %w", linkName, err)
			}
		}
		if v, ok := pa.kw["shape"]; ok {
			if ld.Shape, err = toShape(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("link %s: shape: %w", linkName, err)
			}
		}
		for key, dst := range map[string]**float64{"mass": &ld.Mass, "density": &ld.Density, "volume": &ld.Volume} {
			if err := pa.float(key, dst); err != nil {
				return zygo.SexpNull, fmt.Errorf("link %s: %w", linkName, err)
			}
		}
		if err := pa.vec("com", &ld.CenterOfMass); err != nil {
			return zygo.SexpNull, fmt.Errorf("link %s: %w", linkName, err)
		}
		if err := pa.vec("color", &ld.Color); err != nil {
			return zygo.SexpNull, fmt.Errorf("link %s: %w", linkName, err)
		}
		if v, ok := pa.kw["axis"]; ok {
			if ld.Axis, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("link %s: axis: %w", linkName, err)
			}
		}
		if v, ok := pa.kw["points"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("link %s: points: %w", linkName, err)
			}
			for _, item := range items {
				p, ok := item.(*sexpPoint)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("link %s: points: expected point, got %T", linkName, item)
				}
				ld.Points = append(ld.Points, p.point)
			}
		}

		if g.Lookup(linkName) != nil {
			return zygo.SexpNull, fmt.Errorf("link %s: name already defined", linkName)
		}
		id := graph.NewNodeID("link/" + linkName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeLink,
			Name: linkName,
			Data: ld,
		})

		return &sexpNodeRef{id: id, name: linkName}, nil
	})

	// -----------------------------------------------------------------------
	// (link-ref "torso"), (link-ref "base_link")
	//
	// Registered as "link_ref" because zygomys does not support hyphens in
	// identifiers. The preprocessor converts link-ref to link_ref.
	// -----------------------------------------------------------------------
	env.AddFunction("link_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("link-ref requires a name argument")
		}
		linkName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link-ref: name: %w", err)
		}
		if linkName == graph.BaseLinkName {
			return &sexpNodeRef{id: graph.BaseID, name: linkName}, nil
		}
		n := g.Lookup(linkName)
		if n == nil || !n.Kind.IsLink() {
			return zygo.SexpNull, fmt.Errorf("link-ref: no link named %q", linkName)
		}
		return &sexpNodeRef{id: n.ID, name: linkName}, nil
	})

	// -----------------------------------------------------------------------
	// (mirror (link-ref "L_arm") :plane :xz :name "R_arm")
	// -----------------------------------------------------------------------
	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("mirror requires a link reference")
		}
		src, ok := pa.positional[0].(*sexpNodeRef)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("mirror: expected link reference, got %T", pa.positional[0])
		}

		md := graph.MirrorData{Source: src.id, Plane: mirror.PlaneXZ}
		if v, ok := pa.kw["plane"]; ok {
			p, err := toPlane(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror: plane: %w", err)
			}
			md.Plane = p
		}

		mirName := mirror.Name(src.name)
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror: name: %w", err)
			}
			mirName = s
		}

		if g.Lookup(mirName) != nil {
			return zygo.SexpNull, fmt.Errorf("mirror %s: name already defined", mirName)
		}
		id := graph.NewNodeID("mirror/" + mirName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeMirror,
			Name: mirName,
			Data: md,
		})

		return &sexpNodeRef{id: id, name: mirName}, nil
	})

	// -----------------------------------------------------------------------
	// (joint :parent (link-ref "torso") :child (link-ref "L_arm")
	//        :type :revolute :point "shoulder_l" :axis (vec3 0 0 1)
	//        :lower -1.57 :upper 1.57)
	// -----------------------------------------------------------------------
	env.AddFunction("joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var jd graph.JointData
		var parentName, childName string

		for key, dst := range map[string]*graph.NodeID{"parent": &jd.Parent, "child": &jd.Child} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("joint requires :%s", key)
			}
			ref, ok := v.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("joint: %s: expected link reference, got %T", key, v)
			}
			*dst = ref.id
			if key == "parent" {
				parentName = ref.name
			} else {
				childName = ref.name
			}
		}

		if v, ok := pa.kw["type"]; ok {
			t, err := toJointType(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: type: %w", err)
			}
			jd.Type = t
		}
		if v, ok := pa.kw["point"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: point: %w", err)
			}
			jd.ParentPoint = s
		}
		for key, dst := range map[string]*mgl64.Vec3{"origin": &jd.Origin, "rpy": &jd.RPY, "axis": &jd.Axis} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: %s: %w", key, err)
			}
			*dst = vec
		}

		if jd.Type == graph.JointRevolute || jd.Type == graph.JointPrismatic {
			limit := graph.DefaultLimit
			fields := map[string]*float64{
				"lower": &limit.Lower, "upper": &limit.Upper,
				"effort": &limit.Effort, "velocity": &limit.Velocity,
			}
			for key, dst := range fields {
				v, ok := pa.kw[key]
				if !ok {
					continue
				}
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("joint: %s: %w", key, err)
				}
				*dst = f
			}
			jd.Limit = &limit
		}

		jointName := urdf.JointName(parentName, childName)
		id := graph.NewNodeID("joint/" + jointName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeJoint,
			Name: jointName,
			Data: jd,
		})

		return &sexpNodeRef{id: id, name: jointName}, nil
	})

	// -----------------------------------------------------------------------
	// (robot "arm_bot" :mesh-dir "meshes" torso arm (list j1 j2) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("robot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("robot requires a name argument")
		}
		robotName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("robot: name: %w", err)
		}

		var rd graph.RobotData
		if v, ok := pa.kw["mesh-dir"]; ok {
			if rd.MeshDir, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("robot: mesh-dir: %w", err)
			}
		}

		children, err := nodeRefs(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("robot: %w", err)
		}

		id := graph.NewNodeID("robot/" + robotName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeRobot,
			Name:     robotName,
			Children: children,
			Data:     rd,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: robotName}, nil
	})
}
