// Package scope implements the identifier table and scope stack:
// nested activation frames of (name -> value) bindings, innermost-first
// lookup, and incref/decref-disciplined bind/unbind. Kept deliberately
// small: an ordered slice of frames, each an insertion-ordered map.
package scope

import (
	"fmt"

	"indentlang/internal/value"
)

// Identifier is a (name, value-reference) pair stored in exactly one
// frame for that frame's lifetime.
type Identifier struct {
	Name  string
	Value *value.Object
}

type frame struct {
	order []string
	byName map[string]*Identifier
}

func newFrame() *frame {
	return &frame{byName: make(map[string]*Identifier)}
}

// Stack is the scope stack: an ordered sequence of frames, innermost
// last.
type Stack struct {
	frames []*frame
}

// NewStack returns a stack with a single frame, the module frame,
// which stays in place until the interpreter finishes.
func NewStack() *Stack {
	return &Stack{frames: []*frame{newFrame()}}
}

func (s *Stack) top() *frame { return s.frames[len(s.frames)-1] }

// ModuleFrameDepth is the index of the bottom (module) frame, where
// the function pre-scan registers every function name so it is
// callable from any scope.
const ModuleFrameDepth = 0

// Add inserts name in the current (innermost) frame. Fails with an
// error if the name already exists there; callers convert this into
// a diag.NameError at the call site, where source position is known.
func (s *Stack) Add(name string) (*Identifier, error) {
	return s.addAt(len(s.frames)-1, name)
}

// AddInModule inserts name in the bottom (module) frame regardless of
// current depth, used by the function pre-scan.
func (s *Stack) AddInModule(name string) (*Identifier, error) {
	return s.addAt(ModuleFrameDepth, name)
}

func (s *Stack) addAt(depth int, name string) (*Identifier, error) {
	f := s.frames[depth]
	if _, exists := f.byName[name]; exists {
		return nil, fmt.Errorf("identifier %q already declared in this scope", name)
	}
	id := &Identifier{Name: name}
	f.byName[name] = id
	f.order = append(f.order, name)
	return id, nil
}

// Search scans innermost-first across all frames and returns the
// first hit, or nil.
func (s *Stack) Search(name string) *Identifier {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if id, ok := s.frames[i].byName[name]; ok {
			return id
		}
	}
	return nil
}

// Bind attaches v to id. Any previous attachment is decref'd; the new
// one is incref'd.
func Bind(id *Identifier, v *value.Object) {
	if id.Value != nil {
		value.DecRef(id.Value)
	}
	value.IncRef(v)
	id.Value = v
}

// Unbind decrefs and detaches id's current value.
func Unbind(id *Identifier) {
	if id.Value != nil {
		value.DecRef(id.Value)
		id.Value = nil
	}
}

// AppendLevel pushes a fresh frame, entering a function call.
func (s *Stack) AppendLevel() {
	s.frames = append(s.frames, newFrame())
}

// RemoveLevel pops the innermost frame, releasing every binding in it.
func (s *Stack) RemoveLevel() {
	f := s.top()
	for _, name := range f.order {
		Unbind(f.byName[name])
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports how many frames are currently on the stack (1 means
// only the module frame).
func (s *Stack) Depth() int { return len(s.frames) }
