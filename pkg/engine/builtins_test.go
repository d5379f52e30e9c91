package engine

import (
	"math"
	"testing"

	"github.com/chazu/tenon/pkg/geometry"
	"github.com/chazu/tenon/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box "base" :width 100)`,
			expect: `(box "base" "__kw_width" 100)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder "pin" :radius 5 :height 40)`,
			expect: `(cylinder "pin" "__kw_radius" 5 "__kw_height" 40)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(add-part p)`,
			expect: `(add_part p)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:part-name`,
			expect: `"__kw_part-name"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Primitive builtins
// ---------------------------------------------------------------------------

func TestSimpleBox(t *testing.T) {
	eng := newTestEngine()

	source := `(add-part (box "shelf" :width 600 :height 300 :depth 19))`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if len(doc.Parts()) != 1 {
		t.Fatalf("expected 1 part, got %d", len(doc.Parts()))
	}

	shelf, ok := doc.GetPart("shelf")
	if !ok {
		t.Fatal("expected part named 'shelf'")
	}
	if shelf.Geometry.Kind() != geometry.KindBox {
		t.Errorf("expected box geometry, got %s", shelf.Geometry.Kind())
	}
	if shelf.Parameters["width"] != 600 {
		t.Errorf("expected width=600, got %f", shelf.Parameters["width"])
	}
	if shelf.Parameters["height"] != 300 {
		t.Errorf("expected height=300, got %f", shelf.Parameters["height"])
	}
	if shelf.Parameters["depth"] != 19 {
		t.Errorf("expected depth=19, got %f", shelf.Parameters["depth"])
	}
}

func TestSimpleCylinder(t *testing.T) {
	eng := newTestEngine()

	source := `(add-part (cylinder "pin" :radius 5 :height 40))`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	pin, ok := doc.GetPart("pin")
	if !ok {
		t.Fatal("expected part named 'pin'")
	}
	if pin.Geometry.Kind() != geometry.KindCylinder {
		t.Errorf("expected cylinder geometry, got %s", pin.Geometry.Kind())
	}
	if pin.Parameters["radius"] != 5 || pin.Parameters["height"] != 40 {
		t.Errorf("parameters = %v, want radius=5 height=40", pin.Parameters)
	}
}

func TestBoxMissingDimension(t *testing.T) {
	eng := newTestEngine()

	_, evalErrs, err := eng.Evaluate(`(box "bad" :width 100 :height 50)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for missing :depth")
	}
}

func TestBoxInvalidDimension(t *testing.T) {
	eng := newTestEngine()

	_, evalErrs, err := eng.Evaluate(`(box "bad" :width -1 :height 50 :depth 25)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for negative width")
	}
}

// ---------------------------------------------------------------------------
// Variable reference test
// ---------------------------------------------------------------------------

func TestVariableReference(t *testing.T) {
	eng := newTestEngine()

	source := `
(def thickness 19)
(add-part (box "side" :width 400 :height 200 :depth thickness))
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	side, ok := doc.GetPart("side")
	if !ok {
		t.Fatal("expected part named 'side'")
	}
	if side.Parameters["depth"] != 19 {
		t.Errorf("expected depth=19 (from variable), got %f", side.Parameters["depth"])
	}
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

func TestTranslateBuiltin(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-part (translate (box "shelf" :width 100 :height 50 :depth 10)
                     (vec3 200 100 50)))
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	shelf, ok := doc.GetPart("shelf")
	if !ok {
		t.Fatal("expected part named 'shelf'")
	}
	min, max, err := shelf.BoundingBox()
	if err != nil {
		t.Fatalf("BoundingBox failed: %v", err)
	}
	if min[0] != 150 || max[0] != 250 {
		t.Errorf("X bounds = %v..%v, want 150..250", min[0], max[0])
	}
	if min[1] != 75 || max[1] != 125 {
		t.Errorf("Y bounds = %v..%v, want 75..125", min[1], max[1])
	}
}

func TestRotateBuiltin(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-part (rotate (box "post" :width 10 :height 20 :depth 30)
                  (vec3 0 0 1) 90))
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	post, ok := doc.GetPart("post")
	if !ok {
		t.Fatal("expected part named 'post'")
	}
	m, err := post.Geometry.Tessellate()
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	w, h, _ := kernel.Extents(m)
	const tol = 1e-5
	if math.Abs(w-20) > tol || math.Abs(h-10) > tol {
		t.Errorf("rotated extents = (%v, %v), want (20, 10)", w, h)
	}
}

// ---------------------------------------------------------------------------
// Boolean builtins
// ---------------------------------------------------------------------------

func TestUnionBuiltin(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-part (union (box "a" :width 10 :height 10 :depth 10)
                 (box "b" :width 5 :height 5 :depth 5)))
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	combined, ok := doc.GetPart("a_union_b")
	if !ok {
		t.Fatal("expected part named 'a_union_b'")
	}
	if combined.Geometry.Kind() != geometry.KindMesh {
		t.Errorf("expected mesh geometry, got %s", combined.Geometry.Kind())
	}
	if len(combined.Parameters) != 0 {
		t.Errorf("boolean result parameters = %v, want empty", combined.Parameters)
	}
}

func TestBooleanWrongArity(t *testing.T) {
	eng := newTestEngine()

	_, evalErrs, err := eng.Evaluate(`(union (box "a" :width 1 :height 1 :depth 1))`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for union with one operand")
	}
}

// ---------------------------------------------------------------------------
// Document builtins
// ---------------------------------------------------------------------------

func TestGetPartBuiltin(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-part (box "base" :width 10 :height 10 :depth 10))
(add-part (translate (name (get-part "base") "base-copy") (vec3 20 0 0)))
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(doc.Parts()) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(doc.Parts()))
	}
	if _, ok := doc.GetPart("base-copy"); !ok {
		t.Error("expected part named 'base-copy'")
	}
}

func TestGetPartMissing(t *testing.T) {
	eng := newTestEngine()

	_, evalErrs, err := eng.Evaluate(`(get-part "nonexistent")`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for missing part")
	}
}

func TestUndoRedoBuiltins(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-part (box "a" :width 10 :height 10 :depth 10))
(add-part (box "b" :width 10 :height 10 :depth 10))
(undo)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(doc.Parts()) != 1 {
		t.Fatalf("expected 1 part after undo, got %d", len(doc.Parts()))
	}
	if _, ok := doc.GetPart("b"); ok {
		t.Error("part 'b' should have been undone")
	}

	doc, evalErrs, err = eng.Evaluate(source + "\n(redo)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(doc.Parts()) != 2 {
		t.Fatalf("expected 2 parts after redo, got %d", len(doc.Parts()))
	}
}

func TestUndoEmptyDocument(t *testing.T) {
	eng := newTestEngine()

	_, evalErrs, err := eng.Evaluate(`(undo)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for undo with empty history")
	}
}

// ---------------------------------------------------------------------------
// Parametric builtins
// ---------------------------------------------------------------------------

func TestParametricWorkflow(t *testing.T) {
	eng := newTestEngine()

	source := `
(def cube (parameterize (box "cube" :width 10 :height 20 :depth 30)))
(constrain cube "width" "height")
(set-param cube "width" 50)
(solve cube)
(add-part cube)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	cube, ok := doc.GetPart("cube")
	if !ok {
		t.Fatal("expected part named 'cube'")
	}
	if cube.Parameters["width"] != 50 {
		t.Errorf("width = %f, want 50", cube.Parameters["width"])
	}
	if cube.Parameters["height"] != 50 {
		t.Errorf("height = %f, want 50 (constrained to width)", cube.Parameters["height"])
	}
	if cube.Parameters["depth"] != 30 {
		t.Errorf("depth = %f, want 30 (unconstrained)", cube.Parameters["depth"])
	}

	min, max, err := cube.BoundingBox()
	if err != nil {
		t.Fatalf("BoundingBox failed: %v", err)
	}
	if got := max[0] - min[0]; got != 50 {
		t.Errorf("rebuilt width = %v, want 50", got)
	}
}

func TestSolveInvalidParameter(t *testing.T) {
	eng := newTestEngine()

	source := `
(def pin (parameterize (cylinder "pin" :radius 5 :height 40)))
(set-param pin "radius" -1)
(solve pin)
`
	_, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for negative radius")
	}
}

// ---------------------------------------------------------------------------
// Query builtins
// ---------------------------------------------------------------------------

func TestVolumeBuiltin(t *testing.T) {
	eng := newTestEngine()

	// Stash the computed volume in the parameter map so the test can
	// read it back from the document.
	source := `
(def cube (parameterize (box "cube" :width 10 :height 10 :depth 10)))
(set-param cube "vol" (volume cube))
(add-part cube)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	cube, ok := doc.GetPart("cube")
	if !ok {
		t.Fatal("expected part named 'cube'")
	}
	if v := cube.Parameters["vol"]; math.Abs(v-1000) > 1e-6 {
		t.Errorf("volume = %f, want 1000", v)
	}
}

func TestBoundingBoxBuiltin(t *testing.T) {
	eng := newTestEngine()

	source := `(bounding-box (box "cube" :width 10 :height 10 :depth 10))`
	_, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
}

// ---------------------------------------------------------------------------
// Regressions
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	eng := newTestEngine()
	doc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if len(doc.Parts()) != 0 {
		t.Errorf("expected empty document, got %d parts", len(doc.Parts()))
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	eng := newTestEngine()
	doc, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
}
