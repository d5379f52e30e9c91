// Package csg combines parts with boolean set operations. The heavy
// lifting happens in the kernel; this package handles operand
// tessellation, result cleanup, and naming.
package csg

import (
	"errors"
	"fmt"

	"github.com/chazu/tenon/pkg/geometry"
	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/part"
)

// Op names a boolean set operation.
type Op string

const (
	Union        Op = "union"
	Difference   Op = "difference"
	Intersection Op = "intersection"
)

// ErrInvalidOp indicates an operation name outside the supported set.
var ErrInvalidOp = errors.New("invalid boolean operation")

// ParseOp validates an operation name.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case Union, Difference, Intersection:
		return Op(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidOp)
	}
}

// OpError reports a failure inside a boolean operation, identifying
// the operation and the operands involved.
type OpError struct {
	Op    Op
	A, B  string
	cause error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s of %q and %q: %v", e.Op, e.A, e.B, e.cause)
}

func (e *OpError) Unwrap() error { return e.cause }

// Combine applies a boolean operation to two parts and returns a new
// part named "<a>_<op>_<b>" with mesh-backed geometry and an empty
// parameter map. An unknown operation returns ErrInvalidOp; any
// failure during tessellation or the kernel call is wrapped in an
// OpError.
func Combine(k kernel.Kernel, a, b *part.Part, op Op) (*part.Part, error) {
	if _, err := ParseOp(string(op)); err != nil {
		return nil, err
	}

	fail := func(cause error) (*part.Part, error) {
		return nil, &OpError{Op: op, A: a.Name, B: b.Name, cause: cause}
	}

	ma, err := a.Geometry.Tessellate()
	if err != nil {
		return fail(fmt.Errorf("tessellate %q: %w", a.Name, err))
	}
	mb, err := b.Geometry.Tessellate()
	if err != nil {
		return fail(fmt.Errorf("tessellate %q: %w", b.Name, err))
	}

	var raw *kernel.Mesh
	switch op {
	case Union:
		raw, err = k.Union(ma, mb)
	case Difference:
		raw, err = k.Difference(ma, mb)
	case Intersection:
		raw, err = k.Intersection(ma, mb)
	}
	if err != nil {
		return fail(err)
	}

	clean, err := k.Triangulate(raw)
	if err != nil {
		return fail(fmt.Errorf("triangulate result: %w", err))
	}

	g, err := geometry.FromMesh(k, clean)
	if err != nil {
		return fail(err)
	}

	return part.FromGeometry(fmt.Sprintf("%s_%s_%s", a.Name, op, b.Name), g), nil
}

// UnionParts returns the boolean union of two parts.
func UnionParts(k kernel.Kernel, a, b *part.Part) (*part.Part, error) {
	return Combine(k, a, b, Union)
}

// DifferenceParts returns the boolean difference a - b.
func DifferenceParts(k kernel.Kernel, a, b *part.Part) (*part.Part, error) {
	return Combine(k, a, b, Difference)
}

// IntersectionParts returns the boolean intersection of two parts.
func IntersectionParts(k kernel.Kernel, a, b *part.Part) (*part.Part, error) {
	return Combine(k, a, b, Intersection)
}
