// Package tessellate turns collections of parts into triangle meshes.
// One mesh is produced per part, tagged with the part's name so
// viewers and exporters can identify it.
package tessellate

import (
	"fmt"

	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/part"
)

// Parts tessellates each part in order and returns one named mesh per
// part. The parts are not mutated; each returned mesh is an
// independent copy of the part's tessellation.
func Parts(parts []*part.Part) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(parts))
	for _, p := range parts {
		m, err := p.Geometry.Tessellate()
		if err != nil {
			return nil, fmt.Errorf("tessellate part %q: %w", p.Name, err)
		}
		out := m.Clone()
		out.PartName = p.Name
		meshes = append(meshes, out)
	}
	return meshes, nil
}
