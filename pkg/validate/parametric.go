package validate

import (
	"fmt"

	"github.com/chazu/tenon/pkg/part"
)

// Parametric checks a part's constraint set against its parameter map.
// Constraints naming parameters the part does not have are advisory:
// Solve skips them, which usually means a typo in a parameter name.
func Parametric(pp *part.ParametricPart) []Issue {
	var issues []Issue

	for _, c := range pp.Constraints {
		_, hasA := pp.Parameters[c.A]
		_, hasB := pp.Parameters[c.B]
		if !hasA && !hasB {
			issues = append(issues, Issue{
				Part:     pp.Name,
				Message:  fmt.Sprintf("constraint %q=%q names no existing parameter", c.A, c.B),
				Severity: SeverityWarning,
			})
		}
		if c.Relation != part.RelationEqual {
			issues = append(issues, Issue{
				Part:     pp.Name,
				Message:  fmt.Sprintf("relation %q between %q and %q is not solved", c.Relation, c.A, c.B),
				Severity: SeverityWarning,
			})
		}
		if c.A == c.B {
			issues = append(issues, Issue{
				Part:     pp.Name,
				Message:  fmt.Sprintf("constraint ties parameter %q to itself", c.A),
				Severity: SeverityWarning,
			})
		}
	}

	return issues
}
