package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/tenon/pkg/csg"
	"github.com/chazu/tenon/pkg/document"
	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/part"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Tenon Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: add-part -> add_part
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

// sexpPart wraps a part.Part so it can be passed between builtins.
type sexpPart struct {
	p *part.Part
}

func (s *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", s.p.Name)
}
func (s *sexpPart) Type() *zygo.RegisteredType { return nil }

// sexpParametric wraps a part.ParametricPart.
type sexpParametric struct {
	pp *part.ParametricPart
}

func (s *sexpParametric) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(parametric %q)", s.pp.Name)
}
func (s *sexpParametric) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3-vector.
type sexpVec3 struct {
	v [3]float64
}

func (s *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", s.v[0], s.v[1], s.v[2])
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpBounds wraps an axis-aligned bounding box.
type sexpBounds struct {
	min, max [3]float64
}

func (s *sexpBounds) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(bounds (vec3 %.1f %.1f %.1f) (vec3 %.1f %.1f %.1f))",
		s.min[0], s.min[1], s.min[2], s.max[0], s.max[1], s.max[2])
}
func (s *sexpBounds) Type() *zygo.RegisteredType { return nil }

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
				// Keyword at end with no value — treat as flag with nil.
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
// Handles both preprocessed keywords (__kw_equal) and plain strings ("equal").
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

// toPart extracts a part from a sexpPart or sexpParametric.
func toPart(s zygo.Sexp) (*part.Part, error) {
	switch v := s.(type) {
	case *sexpPart:
		return v.p, nil
	case *sexpParametric:
		return v.pp.Part, nil
	}
	return nil, fmt.Errorf("expected part, got %T (%s)", s, s.SexpString(nil))
}

// toParametric extracts a ParametricPart from a sexpParametric.
func toParametric(s zygo.Sexp) (*part.ParametricPart, error) {
	if v, ok := s.(*sexpParametric); ok {
		return v.pp, nil
	}
	return nil, fmt.Errorf("expected parametric part, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a 3-vector from a sexpVec3.
func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Tenon DSL builtins into a zygomys
// environment. The builtins build parts with the provided kernel,
// discretize cylinders with the given segment count, and mutate the
// provided document.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals and kebab-case names match the registered
// underscore forms.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, segments int, doc *document.Document) {

	// -----------------------------------------------------------------------
	// (box "name" :width 100 :height 50 :depth 25)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("box requires a name argument")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: name: %w", err)
		}

		dims := map[string]float64{}
		for _, key := range []string{"width", "height", "depth"} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("box: missing :%s", key)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %s: %w", key, err)
			}
			dims[key] = f
		}

		p, err := part.Box(k, partName, dims["width"], dims["height"], dims["depth"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpPart{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder "name" :radius 10 :height 50)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires a name argument")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: name: %w", err)
		}

		dims := map[string]float64{}
		for _, key := range []string{"radius", "height"} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder: missing :%s", key)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s: %w", key, err)
			}
			dims[key] = f
		}

		p, err := part.CylinderSegments(k, partName, dims["radius"], dims["height"], segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpPart{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v [3]float64
		for i, label := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", label, err)
			}
			v[i] = f
		}
		return &sexpVec3{v: v}, nil
	})

	// -----------------------------------------------------------------------
	// (name p "new-name") — returns a renamed copy.
	// -----------------------------------------------------------------------
	env.AddFunction("name", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("name requires a part and a string")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		newName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		c := p.Clone()
		c.Name = newName
		return &sexpPart{p: c}, nil
	})

	// -----------------------------------------------------------------------
	// (clone p)
	// -----------------------------------------------------------------------
	env.AddFunction("clone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("clone requires a part")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("clone: %w", err)
		}
		return &sexpPart{p: p.Clone()}, nil
	})

	// -----------------------------------------------------------------------
	// (translate p (vec3 10 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a part and a vec3")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		moved, err := p.Translate(v[0], v[1], v[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpPart{p: moved}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate p (vec3 0 0 1) 90) — angle in degrees.
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a part, an axis vec3, and an angle")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		axis, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
		}
		angle, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
		}
		rotated, err := p.Rotate(axis, angle)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return &sexpPart{p: rotated}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b) / (difference a b) / (intersection a b)
	// -----------------------------------------------------------------------
	boolean := func(op csg.Op) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 parts", op)
			}
			a, err := toPart(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			b, err := toPart(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			result, err := csg.Combine(k, a, b, op)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpPart{p: result}, nil
		}
	}
	env.AddFunction("union", boolean(csg.Union))
	env.AddFunction("difference", boolean(csg.Difference))
	env.AddFunction("intersection", boolean(csg.Intersection))

	// -----------------------------------------------------------------------
	// (add-part p) — registered as add_part; the preprocessor converts.
	// -----------------------------------------------------------------------
	env.AddFunction("add_part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("add-part requires a part")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-part: %w", err)
		}
		doc.AddPart(p)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (get-part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("get_part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("get-part requires a name")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get-part: %w", err)
		}
		p, ok := doc.GetPart(partName)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("get-part: no part named %q", partName)
		}
		return &sexpPart{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (undo) / (redo)
	// -----------------------------------------------------------------------
	env.AddFunction("undo", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if _, err := doc.Undo(); err != nil {
			return zygo.SexpNull, fmt.Errorf("undo: %w", err)
		}
		return zygo.SexpNull, nil
	})
	env.AddFunction("redo", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if _, err := doc.Redo(); err != nil {
			return zygo.SexpNull, fmt.Errorf("redo: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (parameterize p) — wraps a part for constraint editing.
	// -----------------------------------------------------------------------
	env.AddFunction("parameterize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("parameterize requires a part")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parameterize: %w", err)
		}
		return &sexpParametric{pp: part.NewParametric(p)}, nil
	})

	// -----------------------------------------------------------------------
	// (constrain pp "width" "height") — equality by default.
	// (constrain pp "width" "height" :relation :equal)
	// -----------------------------------------------------------------------
	env.AddFunction("constrain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("constrain requires a parametric part and two parameter names")
		}
		pp, err := toParametric(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: %w", err)
		}
		a, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: %w", err)
		}
		b, err := toString(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: %w", err)
		}

		rel := part.RelationEqual
		if v, ok := pa.kw["relation"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constrain: relation: %w", err)
			}
			rel = part.Relation(s)
		}

		pp.AddConstraint(a, b, rel)
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (set-param pp "width" 50)
	// -----------------------------------------------------------------------
	env.AddFunction("set_param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("set-param requires a parametric part, a name, and a value")
		}
		pp, err := toParametric(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-param: %w", err)
		}
		paramName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-param: %w", err)
		}
		value, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-param: %w", err)
		}
		pp.SetParameter(paramName, value)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (solve pp) — propagates constraints and regenerates geometry.
	// -----------------------------------------------------------------------
	env.AddFunction("solve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("solve requires a parametric part")
		}
		pp, err := toParametric(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solve: %w", err)
		}
		if err := pp.Solve(); err != nil {
			return zygo.SexpNull, fmt.Errorf("solve: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (bounding-box p)
	// -----------------------------------------------------------------------
	env.AddFunction("bounding_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("bounding-box requires a part")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounding-box: %w", err)
		}
		min, max, err := p.BoundingBox()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounding-box: %w", err)
		}
		return &sexpBounds{min: min, max: max}, nil
	})

	// -----------------------------------------------------------------------
	// (volume p)
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("volume requires a part")
		}
		p, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		m, err := p.Geometry.Tessellate()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		return &zygo.SexpFloat{Val: kernel.Volume(m)}, nil
	})
}
