package kernel

// Mesh is a triangle mesh. All arrays are flat: vertices has 3 floats
// per vertex (x,y,z), normals has 3 floats per vertex, indices has 3
// uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry. A mesh with vertices
// but no faces is also considered empty: it encloses no solid.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Clone returns a deep copy. The copy shares no storage with the
// original, so transforms on one never alias the other.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{PartName: m.PartName}
	if m.Vertices != nil {
		out.Vertices = make([]float32, len(m.Vertices))
		copy(out.Vertices, m.Vertices)
	}
	if m.Normals != nil {
		out.Normals = make([]float32, len(m.Normals))
		copy(out.Normals, m.Normals)
	}
	if m.Indices != nil {
		out.Indices = make([]uint32, len(m.Indices))
		copy(out.Indices, m.Indices)
	}
	return out
}

// Triangle returns the three vertex positions of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c [3]float64) {
	i0 := m.Indices[t*3+0]
	i1 := m.Indices[t*3+1]
	i2 := m.Indices[t*3+2]
	return m.vertex(i0), m.vertex(i1), m.vertex(i2)
}

func (m *Mesh) vertex(i uint32) [3]float64 {
	return [3]float64{
		float64(m.Vertices[i*3+0]),
		float64(m.Vertices[i*3+1]),
		float64(m.Vertices[i*3+2]),
	}
}
