package kernel

import (
	"fmt"
	"math"
)

// Mesh-level geometric operations. These are pure vertex math, independent
// of any kernel backend, and always return fresh meshes.

// Translate returns a copy of m rigidly translated by (dx, dy, dz).
func Translate(m *Mesh, dx, dy, dz float64) *Mesh {
	out := m.Clone()
	for i := 0; i < len(out.Vertices); i += 3 {
		out.Vertices[i+0] += float32(dx)
		out.Vertices[i+1] += float32(dy)
		out.Vertices[i+2] += float32(dz)
	}
	return out
}

// Rotate returns a copy of m rotated by angleDeg degrees about the given
// axis vector through the origin (Rodrigues rotation). Normals are rotated
// along with the vertices. A zero axis leaves the mesh unchanged.
func Rotate(m *Mesh, angleDeg float64, ax, ay, az float64) *Mesh {
	out := m.Clone()

	length := math.Sqrt(ax*ax + ay*ay + az*az)
	if length == 0 {
		return out
	}
	ux, uy, uz := ax/length, ay/length, az/length

	rad := angleDeg * math.Pi / 180
	c := math.Cos(rad)
	s := math.Sin(rad)
	t := 1 - c

	// Row-major rotation matrix.
	r := [9]float64{
		c + ux*ux*t, ux*uy*t - uz*s, ux*uz*t + uy*s,
		uy*ux*t + uz*s, c + uy*uy*t, uy*uz*t - ux*s,
		uz*ux*t - uy*s, uz*uy*t + ux*s, c + uz*uz*t,
	}

	apply := func(v []float32) {
		for i := 0; i+2 < len(v); i += 3 {
			x := float64(v[i+0])
			y := float64(v[i+1])
			z := float64(v[i+2])
			v[i+0] = float32(r[0]*x + r[1]*y + r[2]*z)
			v[i+1] = float32(r[3]*x + r[4]*y + r[5]*z)
			v[i+2] = float32(r[6]*x + r[7]*y + r[8]*z)
		}
	}
	apply(out.Vertices)
	apply(out.Normals)
	return out
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// An empty mesh has zero bounds.
func Bounds(m *Mesh) (min, max [3]float64) {
	if m.VertexCount() == 0 {
		return min, max
	}
	for a := 0; a < 3; a++ {
		min[a] = math.Inf(1)
		max[a] = math.Inf(-1)
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := float64(m.Vertices[i+a])
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	return min, max
}

// Extents returns the bounding box sizes (max-min) per axis.
func Extents(m *Mesh) (w, h, d float64) {
	min, max := Bounds(m)
	return max[0] - min[0], max[1] - min[1], max[2] - min[2]
}

// Centroid returns the mean of all vertex positions. Accumulation is done
// in float64 so the result is stable for large meshes.
func Centroid(m *Mesh) (x, y, z float64) {
	n := m.VertexCount()
	if n == 0 {
		return 0, 0, 0
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		x += float64(m.Vertices[i+0])
		y += float64(m.Vertices[i+1])
		z += float64(m.Vertices[i+2])
	}
	return x / float64(n), y / float64(n), z / float64(n)
}

// Volume returns the enclosed volume of a closed mesh using the signed
// tetrahedron sum (divergence theorem). Requires consistent outward
// winding; an inside-out mesh yields a negative raw sum, so the absolute
// value is returned.
func Volume(m *Mesh) float64 {
	var sum float64
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		sum += a[0]*(b[1]*c[2]-b[2]*c[1]) +
			a[1]*(b[2]*c[0]-b[0]*c[2]) +
			a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return math.Abs(sum) / 6
}

// Sanitize validates index structure and drops degenerate triangles
// (repeated indices or near-zero area). Backends use it to normalize
// boolean results to clean triangle soup. The input mesh is not modified.
func Sanitize(m *Mesh) (*Mesh, error) {
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("kernel: index count %d is not a multiple of 3", len(m.Indices))
	}
	nv := uint32(m.VertexCount())
	for _, idx := range m.Indices {
		if idx >= nv {
			return nil, fmt.Errorf("kernel: index %d out of range (have %d vertices)", idx, nv)
		}
	}

	out := m.Clone()
	out.Indices = out.Indices[:0]
	for t := 0; t < m.TriangleCount(); t++ {
		i0 := m.Indices[t*3+0]
		i1 := m.Indices[t*3+1]
		i2 := m.Indices[t*3+2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		a, b, c := m.Triangle(t)
		if triArea(a, b, c) < 1e-12 {
			continue
		}
		out.Indices = append(out.Indices, i0, i1, i2)
	}
	return out, nil
}

func triArea(a, b, c [3]float64) float64 {
	e1 := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	e2 := [3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	cx := e1[1]*e2[2] - e1[2]*e2[1]
	cy := e1[2]*e2[0] - e1[0]*e2[2]
	cz := e1[0]*e2[1] - e1[1]*e2[0]
	return math.Sqrt(cx*cx+cy*cy+cz*cz) / 2
}
