package tessellate_test

import (
	"testing"

	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/kernel/sdfx"
	"github.com/chazu/tenon/pkg/part"
	"github.com/chazu/tenon/pkg/tessellate"
)

// newKernel returns a fresh sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.New()
}

func mustBox(t *testing.T, k kernel.Kernel, name string, w, h, d float64) *part.Part {
	t.Helper()
	p, err := part.Box(k, name, w, h, d)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	return p
}

func TestSinglePart(t *testing.T) {
	k := newKernel()
	shelf := mustBox(t, k, "shelf", 600, 300, 18)

	meshes, err := tessellate.Parts([]*part.Part{shelf})
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
}

func TestMultipleParts(t *testing.T) {
	k := newKernel()
	side := mustBox(t, k, "side-panel", 400, 300, 18)
	top := mustBox(t, k, "top-panel", 600, 300, 18)

	meshes, err := tessellate.Parts([]*part.Part{side, top})
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %q should not be empty", m.PartName)
		}
		names[m.PartName] = true
	}
	if !names["side-panel"] {
		t.Error("missing mesh for side-panel")
	}
	if !names["top-panel"] {
		t.Error("missing mesh for top-panel")
	}
}

func TestTranslatedPart(t *testing.T) {
	k := newKernel()
	shelf := mustBox(t, k, "shelf", 100, 50, 10)
	placed, err := shelf.Translate(200, 100, 50)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	meshes, err := tessellate.Parts([]*part.Part{placed})
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	cx, cy, cz := kernel.Centroid(meshes[0])
	const tol = 1e-3
	if abs(cx-200) > tol || abs(cy-100) > tol || abs(cz-50) > tol {
		t.Errorf("centroid = (%.3f, %.3f, %.3f), expected near (200, 100, 50)", cx, cy, cz)
	}
}

func TestMeshesAreIndependentCopies(t *testing.T) {
	k := newKernel()
	shelf := mustBox(t, k, "shelf", 100, 50, 10)

	meshes, err := tessellate.Parts([]*part.Part{shelf})
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	meshes[0].Vertices[0] = 9999

	again, err := tessellate.Parts([]*part.Part{shelf})
	if err != nil {
		t.Fatalf("second Parts failed: %v", err)
	}
	if again[0].Vertices[0] == 9999 {
		t.Error("mutating a returned mesh leaked into the part's tessellation")
	}
}

func TestNoParts(t *testing.T) {
	meshes, err := tessellate.Parts(nil)
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
