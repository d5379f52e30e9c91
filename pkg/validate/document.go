package validate

import (
	"fmt"

	"github.com/chazu/tenon/pkg/document"
	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/part"
)

// volumeEpsilon is the volume below which a solid is considered
// degenerate for advisory purposes.
const volumeEpsilon = 1e-9

// Document runs structural checks on the part list. This tier never
// tessellates, so it is cheap enough to run on every edit.
func Document(d *document.Document) []Issue {
	var issues []Issue
	issues = append(issues, checkPartNames(d.Parts())...)
	issues = append(issues, checkGeometryPresent(d.Parts())...)
	issues = append(issues, checkDimensionParams(d.Parts())...)
	return issues
}

// DocumentAll runs every tier — structural checks plus geometric
// checks that tessellate each part — and returns errors and warnings
// separately.
func DocumentAll(d *document.Document) Result {
	var result Result
	result.add(Document(d)...)
	result.add(checkTessellations(d.Parts())...)
	return result
}

// checkPartNames flags unnamed parts and duplicate names. Duplicates
// are advisory: the document keeps them, but name lookups only ever
// see the first.
func checkPartNames(parts []*part.Part) []Issue {
	var issues []Issue

	seen := make(map[string]int)
	for _, p := range parts {
		if p.Name == "" {
			issues = append(issues, Issue{
				Message:  "part has no name",
				Severity: SeverityError,
			})
			continue
		}
		seen[p.Name]++
	}
	for name, n := range seen {
		if n > 1 {
			issues = append(issues, Issue{
				Part:     name,
				Message:  fmt.Sprintf("name used by %d parts; lookups resolve to the first", n),
				Severity: SeverityWarning,
			})
		}
	}

	return issues
}

// checkGeometryPresent flags parts with no geometry attached.
func checkGeometryPresent(parts []*part.Part) []Issue {
	var issues []Issue
	for _, p := range parts {
		if p.Geometry == nil {
			issues = append(issues, Issue{
				Part:     p.Name,
				Message:  "part has no geometry",
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// dimensionParams are the parameter names the part factories record.
// A solid cannot be rebuilt from a non-positive value for any of them.
var dimensionParams = []string{"width", "height", "depth", "radius"}

// checkDimensionParams flags declared dimension parameters that have
// drifted to non-positive values, e.g. through set-param without a
// solve. The geometry itself is still the last successfully built one,
// so this is advisory.
func checkDimensionParams(parts []*part.Part) []Issue {
	var issues []Issue
	for _, p := range parts {
		for _, name := range dimensionParams {
			if v, ok := p.Parameters[name]; ok && v <= 0 {
				issues = append(issues, Issue{
					Part:     p.Name,
					Message:  fmt.Sprintf("parameter %q is non-positive (%g)", name, v),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return issues
}

// checkTessellations tessellates each part and inspects the resulting
// mesh. Tessellation failures are errors; degenerate solids (near-zero
// volume or flat extents) are warnings since they may be intermediate
// construction geometry.
func checkTessellations(parts []*part.Part) []Issue {
	var issues []Issue

	for _, p := range parts {
		if p.Geometry == nil {
			continue // reported by the structural tier
		}
		m, err := p.Geometry.Tessellate()
		if err != nil {
			issues = append(issues, Issue{
				Part:     p.Name,
				Message:  fmt.Sprintf("tessellation failed: %v", err),
				Severity: SeverityError,
			})
			continue
		}

		if v := kernel.Volume(m); v < volumeEpsilon {
			issues = append(issues, Issue{
				Part:     p.Name,
				Message:  fmt.Sprintf("solid has near-zero volume (%.3g)", v),
				Severity: SeverityWarning,
			})
		}
		if w, h, d := kernel.Extents(m); w < volumeEpsilon || h < volumeEpsilon || d < volumeEpsilon {
			issues = append(issues, Issue{
				Part:     p.Name,
				Message:  fmt.Sprintf("solid is flat along at least one axis (extents %.3g x %.3g x %.3g)", w, h, d),
				Severity: SeverityWarning,
			})
		}
	}

	return issues
}
