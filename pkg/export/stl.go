package export

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/chazu/tenon/pkg/kernel"
)

// stlTriangle is the 50-byte binary STL record. binary.Write emits it
// packed, so the layout matches the format exactly.
type stlTriangle struct {
	Normal     [3]float32
	V1, V2, V3 [3]float32
	Attr       uint16
}

// encodeSTL writes all meshes as a single binary STL solid.
func encodeSTL(w io.Writer, meshes []*kernel.Mesh) error {
	var header [80]byte
	copy(header[:], "binary STL")
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	var total uint32
	for _, m := range meshes {
		total += uint32(m.TriangleCount())
	}
	if err := binary.Write(w, binary.LittleEndian, total); err != nil {
		return err
	}

	for _, m := range meshes {
		for t := 0; t < m.TriangleCount(); t++ {
			a, b, c := m.Triangle(t)
			rec := stlTriangle{
				Normal: faceNormal(a, b, c),
				V1:     toF32(a),
				V2:     toF32(b),
				V3:     toF32(c),
			}
			if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func toF32(v [3]float64) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func faceNormal(a, b, c [3]float64) [3]float32 {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length < 1e-12 {
		return [3]float32{}
	}
	return [3]float32{float32(nx / length), float32(ny / length), float32(nz / length)}
}
