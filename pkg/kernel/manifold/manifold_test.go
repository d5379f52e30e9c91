//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/tenon/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func TestTessellateBox(t *testing.T) {
	k := mustNew(t)
	mesh, err := k.TessellateBox(100, 50, 25)
	if err != nil {
		t.Fatalf("TessellateBox failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	w, h, d := kernel.Extents(mesh)
	if w != 100 || h != 50 || d != 25 {
		t.Errorf("box extents = (%v, %v, %v), want (100, 50, 25)", w, h, d)
	}
}

func TestUnion(t *testing.T) {
	k := mustNew(t)
	a := kernel.BoxMesh(10, 10, 10)
	b := kernel.Translate(kernel.BoxMesh(10, 10, 10), 5, 0, 0)

	u, err := k.Union(a, b)
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	if u.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	want := 1500.0 // two 1000 boxes overlapping by 500
	if got := kernel.Volume(u); math.Abs(got-want) > 1 {
		t.Errorf("union volume = %v, want ~%v", got, want)
	}
}

func TestDifference(t *testing.T) {
	k := mustNew(t)
	a := kernel.BoxMesh(10, 10, 10)
	b := kernel.BoxMesh(4, 4, 4)

	d, err := k.Difference(a, b)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	want := 1000.0 - 64.0
	if got := kernel.Volume(d); math.Abs(got-want) > 1 {
		t.Errorf("difference volume = %v, want ~%v", got, want)
	}
}

func TestIntersectionDisjoint(t *testing.T) {
	k := mustNew(t)
	a := kernel.BoxMesh(10, 10, 10)
	b := kernel.Translate(kernel.BoxMesh(10, 10, 10), 100, 0, 0)

	in, err := k.Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection failed: %v", err)
	}
	if !in.IsEmpty() {
		t.Errorf("disjoint intersection produced %d triangles, want empty", in.TriangleCount())
	}
}

func TestBooleanEmptyOperand(t *testing.T) {
	k := mustNew(t)
	a := kernel.BoxMesh(10, 10, 10)
	if _, err := k.Union(a, &kernel.Mesh{}); err == nil {
		t.Error("Union with empty operand should fail")
	}
}
