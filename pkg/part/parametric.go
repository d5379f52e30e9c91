package part

import (
	"fmt"

	"github.com/chazu/tenon/pkg/geometry"
)

// Relation names how two parameters relate. Only equality is solved;
// other relations are stored but inert.
type Relation string

// RelationEqual forces two parameters to the same value.
const RelationEqual Relation = "equal"

// Constraint ties parameter A to parameter B under a relation.
type Constraint struct {
	A        string
	B        string
	Relation Relation
}

// ParametricPart is a part whose geometry is regenerated from its
// parameter map after constraint solving. Constraints are applied in
// insertion order in a single pass; there is no fixpoint iteration, so
// chains resolve only as far as one sweep carries them.
type ParametricPart struct {
	*Part
	Constraints []Constraint
}

// NewParametric wraps a part for parametric editing.
func NewParametric(p *Part) *ParametricPart {
	return &ParametricPart{Part: p}
}

// AddConstraint records a constraint between two parameters. The
// constraint takes effect on the next Solve.
func (pp *ParametricPart) AddConstraint(a, b string, rel Relation) {
	pp.Constraints = append(pp.Constraints, Constraint{A: a, B: b, Relation: rel})
}

// SetParameter updates a single parameter value. Call Solve to
// propagate constraints and regenerate the geometry.
func (pp *ParametricPart) SetParameter(name string, value float64) {
	if pp.Parameters == nil {
		pp.Parameters = map[string]float64{}
	}
	pp.Parameters[name] = value
}

// UpdateParameters merges the given values into the parameter map and
// solves.
func (pp *ParametricPart) UpdateParameters(values map[string]float64) error {
	for k, v := range values {
		pp.SetParameter(k, v)
	}
	return pp.Solve()
}

// Solve applies the constraints in order, then regenerates the
// geometry from the resulting parameters. For an equality constraint
// the value flows from A to B when A is present, otherwise from B to
// A; constraints naming two absent parameters are skipped.
func (pp *ParametricPart) Solve() error {
	for _, c := range pp.Constraints {
		if c.Relation != RelationEqual {
			continue
		}
		if v, ok := pp.Parameters[c.A]; ok {
			pp.Parameters[c.B] = v
		} else if v, ok := pp.Parameters[c.B]; ok {
			pp.Parameters[c.A] = v
		}
	}
	return pp.rebuild()
}

// rebuild regenerates the geometry from the parameter map. Mesh-backed
// geometry has no generating parameters and is left untouched.
func (pp *ParametricPart) rebuild() error {
	k := pp.Geometry.Kernel()
	switch pp.Geometry.Kind() {
	case geometry.KindBox:
		g, err := geometry.NewBox(k,
			pp.Parameters["width"], pp.Parameters["height"], pp.Parameters["depth"])
		if err != nil {
			return fmt.Errorf("rebuild part %q: %w", pp.Name, err)
		}
		pp.Geometry = g
	case geometry.KindCylinder:
		// Keep the segment count the cylinder was built with.
		cyl, _ := pp.Geometry.Cylinder()
		g, err := geometry.NewCylinderSegments(k,
			pp.Parameters["radius"], pp.Parameters["height"], cyl.Segments)
		if err != nil {
			return fmt.Errorf("rebuild part %q: %w", pp.Name, err)
		}
		pp.Geometry = g
	}
	return nil
}
