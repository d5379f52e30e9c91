package kernel

import "math"

// Exact analytic tessellators for the parametric primitives. Backends use
// these for primitive synthesis so the same parameters always produce the
// same mesh, and so primitive bounding boxes match the declared dimensions
// exactly rather than up to a sampling resolution.

// BoxMesh returns a closed triangle mesh for an axis-aligned box with the
// given extents, centered at the origin. Vertices are duplicated per face
// so normals stay flat: 24 vertices, 12 triangles.
func BoxMesh(w, h, d float64) *Mesh {
	hx := w / 2
	hy := h / 2
	hz := d / 2

	// Each face: outward normal and 4 corners, counter-clockwise seen
	// from outside.
	faces := []struct {
		n [3]float64
		c [4][3]float64
	}{
		{[3]float64{0, 0, 1}, [4][3]float64{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float64{0, 0, -1}, [4][3]float64{{-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}, {hx, -hy, -hz}}},
		{[3]float64{1, 0, 0}, [4][3]float64{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{[3]float64{-1, 0, 0}, [4][3]float64{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{[3]float64{0, 1, 0}, [4][3]float64{{hx, hy, -hz}, {-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}}},
		{[3]float64{0, -1, 0}, [4][3]float64{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}

	m := &Mesh{
		Vertices: make([]float32, 0, 24*3),
		Normals:  make([]float32, 0, 24*3),
		Indices:  make([]uint32, 0, 12*3),
	}
	for _, f := range faces {
		base := uint32(m.VertexCount())
		for _, c := range f.c {
			m.Vertices = append(m.Vertices, float32(c[0]), float32(c[1]), float32(c[2]))
			m.Normals = append(m.Normals, float32(f.n[0]), float32(f.n[1]), float32(f.n[2]))
		}
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return m
}

// CylinderMesh returns a closed triangle mesh for a cylinder of the given
// radius and height, centered at the origin with its axis along Z. The
// circular cross-section is discretized into segments flat facets; callers
// normally pass DefaultSegments. segments values below 3 are clamped to 3.
func CylinderMesh(r, h float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	n := segments
	hz := h / 2

	m := &Mesh{
		Vertices: make([]float32, 0, (4*n+2)*3),
		Normals:  make([]float32, 0, (4*n+2)*3),
		Indices:  make([]uint32, 0, 4*n*3),
	}

	// Side wall: a bottom and top ring with radial normals.
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		cx, cy := math.Cos(theta), math.Sin(theta)
		for _, z := range []float64{-hz, hz} {
			m.Vertices = append(m.Vertices, float32(r*cx), float32(r*cy), float32(z))
			m.Normals = append(m.Normals, float32(cx), float32(cy), 0)
		}
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b0 := uint32(i * 2)
		t0 := uint32(i*2 + 1)
		b1 := uint32(j * 2)
		t1 := uint32(j*2 + 1)
		m.Indices = append(m.Indices,
			b0, b1, t1,
			b0, t1, t0,
		)
	}

	// Caps: center vertex plus a duplicated ring with axial normals.
	for _, cap := range []struct {
		z  float64
		nz float64
	}{{hz, 1}, {-hz, -1}} {
		center := uint32(m.VertexCount())
		m.Vertices = append(m.Vertices, 0, 0, float32(cap.z))
		m.Normals = append(m.Normals, 0, 0, float32(cap.nz))
		ring := uint32(m.VertexCount())
		for i := 0; i < n; i++ {
			theta := 2 * math.Pi * float64(i) / float64(n)
			m.Vertices = append(m.Vertices,
				float32(r*math.Cos(theta)), float32(r*math.Sin(theta)), float32(cap.z))
			m.Normals = append(m.Normals, 0, 0, float32(cap.nz))
		}
		for i := 0; i < n; i++ {
			j := uint32((i + 1) % n)
			if cap.nz > 0 {
				m.Indices = append(m.Indices, center, ring+uint32(i), ring+j)
			} else {
				m.Indices = append(m.Indices, center, ring+j, ring+uint32(i))
			}
		}
	}

	return m
}
