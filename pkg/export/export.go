// Package export serializes tessellated meshes to interchange formats.
// Encoders register themselves by format name; STL (binary) and OBJ are
// built in.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/chazu/tenon/pkg/kernel"
)

// ErrUnsupportedFormat indicates a format name with no registered
// encoder.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Encoder writes a set of meshes to w in a specific format.
type Encoder func(w io.Writer, meshes []*kernel.Mesh) error

var encoders = map[string]Encoder{
	"stl": encodeSTL,
	"obj": encodeOBJ,
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether a format has a registered encoder.
func Supported(format string) bool {
	_, ok := encoders[format]
	return ok
}

// Encode writes the meshes to w in the named format.
func Encode(format string, w io.Writer, meshes []*kernel.Mesh) error {
	enc, ok := encoders[format]
	if !ok {
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err := enc(w, meshes); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
