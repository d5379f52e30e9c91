//go:build manifold

// Package manifold provides a CGo-based mesh kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold
// provides guaranteed-manifold mesh boolean operations, so boolean
// results need no signed-distance round trip.
//
// This package requires the Manifold C library (manifoldc) to be
// installed. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/tenon/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ManifoldKernel)(nil)

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// solid wraps a C ManifoldManifold pointer with a finalizer for
// automatic memory management.
type solid struct {
	ptr *C.ManifoldManifold
}

func newSolid(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// TessellateBox returns an exact box mesh centered at the origin.
func (k *ManifoldKernel) TessellateBox(w, h, d float64) (*kernel.Mesh, error) {
	return kernel.BoxMesh(w, h, d), nil
}

// TessellateCylinder returns a cylinder mesh centered at the origin with
// its axis along Z.
func (k *ManifoldKernel) TessellateCylinder(r, h float64, segments int) (*kernel.Mesh, error) {
	return kernel.CylinderMesh(r, h, segments), nil
}

// Union returns the boolean union of two closed meshes.
func (k *ManifoldKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(a, b, func(sa, sb *solid) *C.ManifoldManifold {
		alloc := C.manifold_alloc_manifold()
		return C.manifold_union(alloc, sa.ptr, sb.ptr)
	})
}

// Difference returns the boolean difference a - b.
func (k *ManifoldKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(a, b, func(sa, sb *solid) *C.ManifoldManifold {
		alloc := C.manifold_alloc_manifold()
		return C.manifold_difference(alloc, sa.ptr, sb.ptr)
	})
}

// Intersection returns the boolean intersection of two closed meshes.
func (k *ManifoldKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(a, b, func(sa, sb *solid) *C.ManifoldManifold {
		alloc := C.manifold_alloc_manifold()
		return C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	})
}

// Triangulate normalizes a mesh to clean triangle soup.
func (k *ManifoldKernel) Triangulate(m *kernel.Mesh) (*kernel.Mesh, error) {
	out, err := kernel.Sanitize(m)
	if err != nil {
		return nil, fmt.Errorf("manifold: triangulate: %w", err)
	}
	return out, nil
}

func (k *ManifoldKernel) boolean(a, b *kernel.Mesh, op func(sa, sb *solid) *C.ManifoldManifold) (*kernel.Mesh, error) {
	sa, err := fromMesh(a)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand a: %w", err)
	}
	sb, err := fromMesh(b)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand b: %w", err)
	}
	result := newSolid(op(sa, sb))
	mesh, err := toMesh(result)
	runtime.KeepAlive(sa)
	runtime.KeepAlive(sb)
	return mesh, err
}

// fromMesh lifts a triangle mesh into a Manifold solid via MeshGL.
func fromMesh(m *kernel.Mesh) (*solid, error) {
	if m == nil || m.IsEmpty() {
		return nil, errors.New("cannot lift an empty mesh")
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&m.Vertices[0])),
		C.size_t(m.VertexCount()),
		C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&m.Indices[0])),
		C.size_t(m.TriangleCount()),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_of_meshgl(alloc, meshGL)

	s := newSolid(ptr)
	status := C.manifold_status(s.ptr)
	if status != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("manifold rejected mesh: status %d", int(status))
	}
	return s, nil
}

// toMesh extracts a triangle mesh from a solid using Manifold's MeshGL
// format. Vertex positions and normals are interleaved in MeshGL; this
// separates them into the kernel.Mesh flat-array layout.
func toMesh(s *solid) (*kernel.Mesh, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, s.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propLen := numVert * numProp
	propData := make([]float32, propLen)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	triLen := numTri * 3
	indices := make([]uint32, triLen)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}

	for i := 0; i < numVert; i++ {
		base := i * numProp
		vertices[i*3+0] = propData[base+0]
		vertices[i*3+1] = propData[base+1]
		vertices[i*3+2] = propData[base+2]
		if hasNormals {
			normals[i*3+0] = propData[base+3]
			normals[i*3+1] = propData[base+4]
			normals[i*3+2] = propData[base+5]
		}
	}

	if !hasNormals {
		normals = computeFlatNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}

	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}

	return mesh, nil
}

// computeFlatNormals generates per-vertex normals by averaging the face
// normals of all triangles incident on each vertex. This is a fallback
// when MeshGL does not include normals in the vertex properties.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		i0 := indices[t*3+0]
		i1 := indices[t*3+1]
		i2 := indices[t*3+2]

		ax, ay, az := float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])
		bx, by, bz := float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])
		cx, cy, cz := float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az

		nx := float32(e1y*e2z - e1z*e2y)
		ny := float32(e1z*e2x - e1x*e2z)
		nz := float32(e1x*e2y - e1y*e2x)

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < numVerts; i++ {
		nx := float64(normals[i*3+0])
		ny := float64(normals[i*3+1])
		nz := float64(normals[i*3+2])
		length := sqrt64(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i*3+0] = float32(nx / length)
			normals[i*3+1] = float32(ny / length)
			normals[i*3+2] = float32(nz / length)
		}
	}

	return normals
}

// sqrt64 computes the square root without importing math to keep the
// dependency footprint minimal. Uses Newton's method.
func sqrt64(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 20; i++ {
		z = (z + x/z) / 2
	}
	return z
}
