package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/tenon/pkg/kernel"
)

// encodeOBJ writes the meshes as Wavefront OBJ, one named object per
// mesh. Face indices are 1-based and global across objects, so vertex
// offsets accumulate.
func encodeOBJ(w io.Writer, meshes []*kernel.Mesh) error {
	bw := bufio.NewWriter(w)

	offset := 1
	for i, m := range meshes {
		name := m.PartName
		if name == "" {
			name = fmt.Sprintf("mesh_%d", i)
		}
		if _, err := fmt.Fprintf(bw, "o %s\n", name); err != nil {
			return err
		}

		for v := 0; v < m.VertexCount(); v++ {
			x := m.Vertices[v*3+0]
			y := m.Vertices[v*3+1]
			z := m.Vertices[v*3+2]
			if _, err := fmt.Fprintf(bw, "v %g %g %g\n", x, y, z); err != nil {
				return err
			}
		}
		for t := 0; t < m.TriangleCount(); t++ {
			i0 := int(m.Indices[t*3+0]) + offset
			i1 := int(m.Indices[t*3+1]) + offset
			i2 := int(m.Indices[t*3+2]) + offset
			if _, err := fmt.Fprintf(bw, "f %d %d %d\n", i0, i1, i2); err != nil {
				return err
			}
		}
		offset += m.VertexCount()
	}

	return bw.Flush()
}
