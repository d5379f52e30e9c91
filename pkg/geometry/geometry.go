// Package geometry defines the solid shapes a part can carry. A
// Geometry is one of a small set of tagged variants (box, cylinder,
// raw mesh) plus a reference to the kernel that discretizes it. The
// triangle mesh is produced lazily on the first Tessellate call and
// cached; transformed geometries are new mesh-backed values, so the
// cache never needs invalidation.
package geometry

import (
	"fmt"

	"github.com/chazu/tenon/pkg/kernel"
)

// Kind discriminates the geometry variants.
type Kind int

const (
	// KindBox is an axis-aligned rectangular solid centered at the origin.
	KindBox Kind = iota
	// KindCylinder is a right circular cylinder centered at the origin
	// with its axis along Z.
	KindCylinder
	// KindMesh is an explicit triangle mesh, produced by boolean
	// operations, transforms, or imported data.
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindMesh:
		return "mesh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BoxParams holds the dimensions of a box primitive.
type BoxParams struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// CylinderParams holds the dimensions of a cylinder primitive.
type CylinderParams struct {
	Radius   float64 `json:"radius"`
	Height   float64 `json:"height"`
	Segments int     `json:"segments"`
}

// Geometry is a solid shape bound to a tessellation kernel. The zero
// value is not usable; construct through NewBox, NewCylinder or
// FromMesh.
type Geometry struct {
	kind Kind
	box  BoxParams
	cyl  CylinderParams

	k    kernel.Kernel
	mesh *kernel.Mesh // lazily populated tessellation
}

// NewBox creates a box geometry. All dimensions must be positive.
func NewBox(k kernel.Kernel, width, height, depth float64) (*Geometry, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("box %gx%gx%g: %w", width, height, depth, ErrInvalidDimension)
	}
	return &Geometry{
		kind: KindBox,
		box:  BoxParams{Width: width, Height: height, Depth: depth},
		k:    k,
	}, nil
}

// NewCylinder creates a cylinder geometry with the default number of
// radial segments. Radius and height must be positive.
func NewCylinder(k kernel.Kernel, radius, height float64) (*Geometry, error) {
	return NewCylinderSegments(k, radius, height, kernel.DefaultSegments)
}

// NewCylinderSegments creates a cylinder geometry with an explicit
// radial segment count. Counts below 3 are clamped by the kernel.
func NewCylinderSegments(k kernel.Kernel, radius, height float64, segments int) (*Geometry, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("cylinder r=%g h=%g: %w", radius, height, ErrInvalidDimension)
	}
	return &Geometry{
		kind: KindCylinder,
		cyl:  CylinderParams{Radius: radius, Height: height, Segments: segments},
		k:    k,
	}, nil
}

// FromMesh wraps an explicit triangle mesh as a geometry. The mesh is
// cloned, so the caller keeps ownership of its copy.
func FromMesh(k kernel.Kernel, m *kernel.Mesh) (*Geometry, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("mesh geometry: %w", ErrInvalidMesh)
	}
	return &Geometry{
		kind: KindMesh,
		k:    k,
		mesh: m.Clone(),
	}, nil
}

// Kind reports which variant this geometry is.
func (g *Geometry) Kind() Kind { return g.kind }

// Kernel returns the tessellation kernel this geometry is bound to.
func (g *Geometry) Kernel() kernel.Kernel { return g.k }

// Box returns the box parameters. The second return is false for
// non-box geometries.
func (g *Geometry) Box() (BoxParams, bool) {
	return g.box, g.kind == KindBox
}

// Cylinder returns the cylinder parameters. The second return is false
// for non-cylinder geometries.
func (g *Geometry) Cylinder() (CylinderParams, bool) {
	return g.cyl, g.kind == KindCylinder
}

// Tessellate returns the triangle mesh for this geometry, invoking the
// kernel on first use and caching the result. Callers must not mutate
// the returned mesh; use Clone for a private copy.
func (g *Geometry) Tessellate() (*kernel.Mesh, error) {
	if g.mesh != nil {
		return g.mesh, nil
	}

	var (
		m   *kernel.Mesh
		err error
	)
	switch g.kind {
	case KindBox:
		m, err = g.k.TessellateBox(g.box.Width, g.box.Height, g.box.Depth)
	case KindCylinder:
		m, err = g.k.TessellateCylinder(g.cyl.Radius, g.cyl.Height, g.cyl.Segments)
	default:
		return nil, fmt.Errorf("tessellate %s geometry: %w", g.kind, ErrInvalidMesh)
	}
	if err != nil {
		return nil, fmt.Errorf("tessellate %s: %w", g.kind, err)
	}
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("tessellate %s: %w", g.kind, ErrEmptyTessellation)
	}

	g.mesh = m
	return g.mesh, nil
}

// BoundingBox returns the axis-aligned bounds of the tessellated
// geometry.
func (g *Geometry) BoundingBox() (min, max [3]float64, err error) {
	m, err := g.Tessellate()
	if err != nil {
		return min, max, err
	}
	min, max = kernel.Bounds(m)
	return min, max, nil
}

// Translate returns a new mesh-backed geometry displaced by the given
// offsets. The receiver is not modified.
func (g *Geometry) Translate(dx, dy, dz float64) (*Geometry, error) {
	m, err := g.Tessellate()
	if err != nil {
		return nil, err
	}
	return FromMesh(g.k, kernel.Translate(m, dx, dy, dz))
}

// Rotate returns a new mesh-backed geometry rotated by angle degrees
// about the given axis through the origin. The receiver is not
// modified.
func (g *Geometry) Rotate(axis [3]float64, angleDeg float64) (*Geometry, error) {
	m, err := g.Tessellate()
	if err != nil {
		return nil, err
	}
	return FromMesh(g.k, kernel.Rotate(m, angleDeg, axis[0], axis[1], axis[2]))
}

// Clone returns a deep copy of the geometry, including any cached
// tessellation.
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{
		kind: g.kind,
		box:  g.box,
		cyl:  g.cyl,
		k:    g.k,
	}
	if g.mesh != nil {
		out.mesh = g.mesh.Clone()
	}
	return out
}
