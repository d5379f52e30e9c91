// Package kernel defines the abstract mesh kernel interface and the
// triangle mesh type shared by the rest of the system. Implementations
// (sdfx, manifold) provide primitive tessellation and boolean set
// operations on closed meshes behind this interface. The kernel
// abstraction allows swapping backends without changing the part model.
package kernel

// DefaultSegments is the fixed angular resolution used when tessellating
// cylinders. Fixed so repeated tessellation of the same primitive is
// deterministic.
const DefaultSegments = 32

// Kernel is the abstract mesh kernel interface. Primitive tessellators
// produce closed triangle meshes; boolean operations consume and produce
// closed triangle meshes. Implementations may fail on degenerate input
// (empty operands, non-manifold intersections) and must never return an
// empty mesh together with a nil error from a boolean operation unless
// the result genuinely has no volume.
type Kernel interface {
	// Primitive tessellation
	TessellateBox(w, h, d float64) (*Mesh, error)
	TessellateCylinder(r, h float64, segments int) (*Mesh, error)

	// Boolean set operations on closed meshes
	Union(a, b *Mesh) (*Mesh, error)
	Difference(a, b *Mesh) (*Mesh, error)
	Intersection(a, b *Mesh) (*Mesh, error)

	// Triangulate normalizes a mesh to triangles only, dropping
	// degenerate faces. Boolean backends may emit mixed or zero-area
	// polygons; callers re-triangulate results before wrapping them.
	Triangulate(m *Mesh) (*Mesh, error)
}
