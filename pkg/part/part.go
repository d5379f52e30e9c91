// Package part models named solid parts. A Part pairs a geometry with
// a parameter map recording the dimensions it was built from; the
// parametric layer in this package rebuilds geometry from those
// parameters after constraint solving.
package part

import (
	"fmt"

	"github.com/chazu/tenon/pkg/geometry"
	"github.com/chazu/tenon/pkg/kernel"
)

// Part is a named solid with the parameters used to construct it.
// Derived parts (boolean results, transformed parts) carry an empty
// parameter map.
type Part struct {
	Name       string
	Geometry   *geometry.Geometry
	Parameters map[string]float64
}

// Box creates a box part. Dimensions are recorded under the keys
// "width", "height" and "depth".
func Box(k kernel.Kernel, name string, width, height, depth float64) (*Part, error) {
	g, err := geometry.NewBox(k, width, height, depth)
	if err != nil {
		return nil, fmt.Errorf("part %q: %w", name, err)
	}
	return &Part{
		Name:     name,
		Geometry: g,
		Parameters: map[string]float64{
			"width":  width,
			"height": height,
			"depth":  depth,
		},
	}, nil
}

// Cylinder creates a cylinder part with the default radial segment
// count. Dimensions are recorded under the keys "radius" and "height".
func Cylinder(k kernel.Kernel, name string, radius, height float64) (*Part, error) {
	return CylinderSegments(k, name, radius, height, kernel.DefaultSegments)
}

// CylinderSegments creates a cylinder part with an explicit radial
// segment count.
func CylinderSegments(k kernel.Kernel, name string, radius, height float64, segments int) (*Part, error) {
	g, err := geometry.NewCylinderSegments(k, radius, height, segments)
	if err != nil {
		return nil, fmt.Errorf("part %q: %w", name, err)
	}
	return &Part{
		Name:     name,
		Geometry: g,
		Parameters: map[string]float64{
			"radius": radius,
			"height": height,
		},
	}, nil
}

// FromGeometry wraps an existing geometry as a part with no recorded
// parameters.
func FromGeometry(name string, g *geometry.Geometry) *Part {
	return &Part{
		Name:       name,
		Geometry:   g,
		Parameters: map[string]float64{},
	}
}

// Translate returns a new part displaced by the given offsets. The
// parameter map is copied unchanged.
func (p *Part) Translate(dx, dy, dz float64) (*Part, error) {
	g, err := p.Geometry.Translate(dx, dy, dz)
	if err != nil {
		return nil, fmt.Errorf("translate part %q: %w", p.Name, err)
	}
	return &Part{Name: p.Name, Geometry: g, Parameters: copyParams(p.Parameters)}, nil
}

// Rotate returns a new part rotated by angle degrees about the given
// axis through the origin. The parameter map is copied unchanged.
func (p *Part) Rotate(axis [3]float64, angleDeg float64) (*Part, error) {
	g, err := p.Geometry.Rotate(axis, angleDeg)
	if err != nil {
		return nil, fmt.Errorf("rotate part %q: %w", p.Name, err)
	}
	return &Part{Name: p.Name, Geometry: g, Parameters: copyParams(p.Parameters)}, nil
}

// BoundingBox returns the axis-aligned bounds of the part's geometry.
func (p *Part) BoundingBox() (min, max [3]float64, err error) {
	return p.Geometry.BoundingBox()
}

// Clone returns a deep copy of the part.
func (p *Part) Clone() *Part {
	return &Part{
		Name:       p.Name,
		Geometry:   p.Geometry.Clone(),
		Parameters: copyParams(p.Parameters),
	}
}

func copyParams(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
