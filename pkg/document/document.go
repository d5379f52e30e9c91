// Package document holds a named collection of parts together with an
// action log supporting undo and redo. Every mutation appends an
// action; undo pops the log onto a redo stack, and any new mutation
// clears the redo stack so history never forks.
package document

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/tenon/pkg/export"
	"github.com/chazu/tenon/pkg/part"
	"github.com/chazu/tenon/pkg/tessellate"
)

var (
	// ErrEmptyName indicates a document was created without a name.
	ErrEmptyName = errors.New("document name must not be empty")

	// ErrNoHistory indicates Undo was called with nothing to undo.
	ErrNoHistory = errors.New("nothing to undo")

	// ErrNoRedo indicates Redo was called with nothing to redo.
	ErrNoRedo = errors.New("nothing to redo")
)

// ActionKind names a document mutation.
type ActionKind int

const (
	// ActionAdd records a part being added to the document.
	ActionAdd ActionKind = iota
)

func (k ActionKind) String() string {
	switch k {
	case ActionAdd:
		return "add"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is one entry in the document's history log.
type Action struct {
	ID   uuid.UUID
	Kind ActionKind
	Part *part.Part
	At   time.Time
}

// Document is a named collection of parts with undoable history.
type Document struct {
	name    string
	parts   []*part.Part
	history []Action
	redo    []Action
}

// New creates an empty document. The name must not be empty.
func New(name string) (*Document, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Document{name: name}, nil
}

// Name returns the document's name.
func (d *Document) Name() string { return d.name }

// AddPart appends a part to the document and logs the action. Adding a
// part clears the redo stack: once the model diverges, the undone
// branch is unreachable.
func (d *Document) AddPart(p *part.Part) Action {
	a := Action{
		ID:   uuid.New(),
		Kind: ActionAdd,
		Part: p,
		At:   time.Now(),
	}
	d.parts = append(d.parts, p)
	d.history = append(d.history, a)
	d.redo = nil
	return a
}

// Undo reverts the most recent action and returns it. The action moves
// to the redo stack.
func (d *Document) Undo() (Action, error) {
	if len(d.history) == 0 {
		return Action{}, ErrNoHistory
	}
	a := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]

	switch a.Kind {
	case ActionAdd:
		d.removePart(a.Part)
	}

	d.redo = append(d.redo, a)
	return a, nil
}

// Redo re-applies the most recently undone action and returns it.
func (d *Document) Redo() (Action, error) {
	if len(d.redo) == 0 {
		return Action{}, ErrNoRedo
	}
	a := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]

	switch a.Kind {
	case ActionAdd:
		d.parts = append(d.parts, a.Part)
	}

	d.history = append(d.history, a)
	return a, nil
}

// CanUndo reports whether the history log is non-empty.
func (d *Document) CanUndo() bool { return len(d.history) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (d *Document) CanRedo() bool { return len(d.redo) > 0 }

// GetPart returns the first part with the given name.
func (d *Document) GetPart(name string) (*part.Part, bool) {
	for _, p := range d.parts {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Parts returns a copy of the part list in insertion order.
func (d *Document) Parts() []*part.Part {
	out := make([]*part.Part, len(d.parts))
	copy(out, d.parts)
	return out
}

// History returns a copy of the action log, oldest first.
func (d *Document) History() []Action {
	out := make([]Action, len(d.history))
	copy(out, d.history)
	return out
}

// Export tessellates every part and writes the meshes to w in the
// named format. Unknown formats fail with export.ErrUnsupportedFormat
// before any tessellation work happens.
func (d *Document) Export(format string, w io.Writer) error {
	if !export.Supported(format) {
		return fmt.Errorf("export document %q: %q: %w", d.name, format, export.ErrUnsupportedFormat)
	}
	meshes, err := tessellate.Parts(d.parts)
	if err != nil {
		return fmt.Errorf("export document %q: %w", d.name, err)
	}
	return export.Encode(format, w, meshes)
}

// removePart drops the last occurrence of p, matching by pointer so
// same-named parts stay intact.
func (d *Document) removePart(p *part.Part) {
	for i := len(d.parts) - 1; i >= 0; i-- {
		if d.parts[i] == p {
			d.parts = append(d.parts[:i], d.parts[i+1:]...)
			return
		}
	}
}
