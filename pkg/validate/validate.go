// Package validate lints documents before evaluation or export.
// Findings come in two severities: errors block downstream work,
// warnings are advisory. Checks run in tiers — structural checks on
// the part list, geometric checks on tessellations, and parametric
// checks on constraint sets.
package validate

import "fmt"

// Severity indicates whether a finding blocks evaluation or is merely
// informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks evaluation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Issue describes a single validation finding.
type Issue struct {
	Part     string // which part has the problem (empty if document-level)
	Message  string
	Severity Severity
}

func (i Issue) Error() string {
	if i.Part == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] part %q: %s", i.Severity, i.Part, i.Message)
}

// Result bundles errors (blocking) and warnings (advisory) from all
// validation tiers.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether no blocking errors were found.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) add(issues ...Issue) {
	for _, i := range issues {
		if i.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, i)
		} else {
			r.Errors = append(r.Errors, i)
		}
	}
}
