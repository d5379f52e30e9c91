// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Primitive tessellation uses the exact analytic meshers from pkg/kernel
// so primitive meshes are deterministic and dimensionally exact. Boolean
// operations lift each operand mesh to a signed distance field, combine
// the fields with sdfx's CSG operators, and re-mesh the result with
// marching cubes.
package sdfx

import (
	"fmt"

	"github.com/chazu/tenon/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes resolution when re-meshing
// boolean results.
const DefaultMeshCells = 200

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel with the default boolean re-meshing
// resolution.
func New() *SdfxKernel {
	return NewWithCells(DefaultMeshCells)
}

// NewWithCells returns a SdfxKernel that re-meshes boolean results on a
// marching cubes grid of the given cell count. Lower values trade surface
// fidelity for speed; tests use small grids.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

// TessellateBox returns an exact box mesh centered at the origin.
func (k *SdfxKernel) TessellateBox(w, h, d float64) (*kernel.Mesh, error) {
	return kernel.BoxMesh(w, h, d), nil
}

// TessellateCylinder returns a cylinder mesh centered at the origin with
// its axis along Z, discretized into the given number of segments.
func (k *SdfxKernel) TessellateCylinder(r, h float64, segments int) (*kernel.Mesh, error) {
	return kernel.CylinderMesh(r, h, segments), nil
}

// Union returns the boolean union of two closed meshes.
func (k *SdfxKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := liftPair(a, b)
	if err != nil {
		return nil, fmt.Errorf("sdfx: union: %w", err)
	}
	return k.toMesh(sdf.Union3D(sa, sb))
}

// Difference returns the boolean difference a - b.
func (k *SdfxKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := liftPair(a, b)
	if err != nil {
		return nil, fmt.Errorf("sdfx: difference: %w", err)
	}
	return k.toMesh(sdf.Difference3D(sa, sb))
}

// Intersection returns the boolean intersection of two closed meshes.
func (k *SdfxKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := liftPair(a, b)
	if err != nil {
		return nil, fmt.Errorf("sdfx: intersection: %w", err)
	}
	return k.toMesh(sdf.Intersect3D(sa, sb))
}

// Triangulate normalizes a mesh to clean triangle soup.
func (k *SdfxKernel) Triangulate(m *kernel.Mesh) (*kernel.Mesh, error) {
	out, err := kernel.Sanitize(m)
	if err != nil {
		return nil, fmt.Errorf("sdfx: triangulate: %w", err)
	}
	return out, nil
}

// liftPair converts both operand meshes to signed distance fields.
func liftPair(a, b *kernel.Mesh) (sdf.SDF3, sdf.SDF3, error) {
	sa, err := newMeshSDF(a)
	if err != nil {
		return nil, nil, fmt.Errorf("operand a: %w", err)
	}
	sb, err := newMeshSDF(b)
	if err != nil {
		return nil, nil, fmt.Errorf("operand b: %w", err)
	}
	return sa, sb, nil
}

// toMesh converts an SDF to a triangle mesh using marching cubes.
// Vertices are duplicated per triangle with flat face normals.
func (k *SdfxKernel) toMesh(s sdf.SDF3) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
