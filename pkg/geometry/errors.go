package geometry

import "errors"

var (
	// ErrInvalidDimension indicates a primitive was requested with a
	// non-positive width, height, depth or radius.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidMesh indicates a mesh-backed geometry was constructed
	// from a nil or empty mesh.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrEmptyTessellation indicates the kernel produced a mesh with no
	// vertices or no faces.
	ErrEmptyTessellation = errors.New("tessellation produced an empty mesh")
)
