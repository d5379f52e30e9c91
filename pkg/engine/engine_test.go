package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/tenon/pkg/kernel"
)

// stubKernel tessellates primitives analytically and fakes booleans by
// returning the first operand, keeping engine tests fast and
// deterministic.
type stubKernel struct{}

var _ kernel.Kernel = (*stubKernel)(nil)

func (s *stubKernel) TessellateBox(w, h, d float64) (*kernel.Mesh, error) {
	return kernel.BoxMesh(w, h, d), nil
}

func (s *stubKernel) TessellateCylinder(r, h float64, segments int) (*kernel.Mesh, error) {
	return kernel.CylinderMesh(r, h, segments), nil
}

func (s *stubKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error)        { return a.Clone(), nil }
func (s *stubKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error)   { return a.Clone(), nil }
func (s *stubKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) { return a.Clone(), nil }
func (s *stubKernel) Triangulate(m *kernel.Mesh) (*kernel.Mesh, error)     { return kernel.Sanitize(m) }

func newTestEngine() *Engine {
	return NewEngine(&stubKernel{})
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := newTestEngine()

	doc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if len(doc.Parts()) != 0 {
		t.Errorf("expected empty document, got %d parts", len(doc.Parts()))
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := newTestEngine()

	doc, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if len(doc.Parts()) != 0 {
		t.Errorf("expected empty document, got %d parts", len(doc.Parts()))
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := newTestEngine()

	// (+ 1 2) is valid Lisp that zygomys can evaluate. No parts are
	// added, so the document stays empty.
	doc, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if len(doc.Parts()) != 0 {
		t.Errorf("expected empty document, got %d parts", len(doc.Parts()))
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := newTestEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := newTestEngine()

	// Unmatched paren is a parse error.
	doc, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}

	// The error message should contain something meaningful.
	msg := evalErrs[0].Message
	if msg == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := newTestEngine()

	// Referencing an undefined symbol should produce an eval error.
	doc, evalErrs, err := eng.Evaluate("(+ 1 undefined_symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := newTestEngine()

	// Put the error on line 2.
	source := "(+ 1 2)\n(+ 3"
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info may or may not be available depending on the error
	// format; we just check the error is populated.
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	// No line info.
	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newTestEngine()

	source := `(add-part (box "base" :width 100 :height 50 :depth 25))`
	for i := 0; i < 5; i++ {
		doc, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if doc == nil {
			t.Fatalf("iteration %d: expected non-nil document", i)
		}
		if len(doc.Parts()) != 1 {
			t.Errorf("iteration %d: expected 1 part, got %d", i, len(doc.Parts()))
		}
	}
}

func TestEngineUsesConfiguredSegments(t *testing.T) {
	// stubKernel tessellates cylinders analytically with 4n+2 vertices,
	// so the vertex count reveals the segment count the engine passed.
	eng := NewEngineWithConfig(&stubKernel{}, 0, 8)

	doc, evalErrs, err := eng.Evaluate(`(add-part (cylinder "c" :radius 10 :height 5))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	parts := doc.Parts()
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	m, err := parts[0].Geometry.Tessellate()
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if got, want := m.VertexCount(), 4*8+2; got != want {
		t.Errorf("vertex count = %d, want %d (8 segments)", got, want)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Test the timeout plumbing directly with a channel that never
	// sends, rather than through the Engine (which would require an
	// infinite loop that zygomys can actually execute). A short
	// configured timeout keeps the test fast.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // Never sends

	const timeout = 50 * time.Millisecond
	done := make(chan struct{})
	var resultErr error

	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen, timeout)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(timeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	// Test that a stale generation is detected.
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{doc: nil, errors: nil, err: nil}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, EvalTimeout)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
