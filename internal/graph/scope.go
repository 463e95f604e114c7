// Package graph holds the typed property tree produced by ingestion: Scopes
// (structured nodes) whose properties are Entities (scalars or references to
// owned child Scopes).
package graph

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("scope not found")
	ErrSealed            = errors.New("scope is sealed")
	ErrDanglingReference = errors.New("entity references a scope this scope does not own")
)

// IDFunc generates scope identifiers. Every call must return a value not
// returned before within the same graph.
type IDFunc func() string

// UUIDs is the default IDFunc.
func UUIDs() string { return uuid.NewString() }

// SequentialIDs returns an IDFunc yielding prefix1, prefix2, ... Used for
// reproducible output.
func SequentialIDs(prefix string) IDFunc {
	var n atomic.Uint64
	return func() string {
		return prefix + strconv.FormatUint(n.Add(1), 10)
	}
}

// Scope is one structured node. It exclusively owns its child scopes and
// keeps its properties in insertion order. There is no pointer back to the
// parent; see Index for reverse lookups.
type Scope struct {
	id       string
	typeTag  string
	sequence bool

	keys     []string
	props    map[string]Entity
	children map[string]*Scope // child id -> child
	refs     map[string]string // child id -> property name

	newID  IDFunc
	sealed bool
}

// NewScope allocates a scope with a fresh UUID.
func NewScope(typeTag string) *Scope {
	return NewScopeWithIDs(typeTag, nil)
}

// NewScopeWithIDs allocates a scope whose id, and the ids of every child
// created through it, come from ids. A nil ids means UUIDs.
func NewScopeWithIDs(typeTag string, ids IDFunc) *Scope {
	if ids == nil {
		ids = UUIDs
	}
	return &Scope{
		id:       ids(),
		typeTag:  typeTag,
		props:    make(map[string]Entity),
		children: make(map[string]*Scope),
		refs:     make(map[string]string),
		newID:    ids,
	}
}

// NewSequenceWithIDs allocates a scope standing for an array; its property
// names are positional indices.
func NewSequenceWithIDs(ids IDFunc) *Scope {
	s := NewScopeWithIDs("", ids)
	s.sequence = true
	return s
}

func (s *Scope) ID() string       { return s.id }
func (s *Scope) TypeTag() string  { return s.typeTag }
func (s *Scope) IsSequence() bool { return s.sequence }
func (s *Scope) Sealed() bool     { return s.sealed }
func (s *Scope) Len() int         { return len(s.keys) }

// SetTypeTag sets the declared type of an unsealed scope.
func (s *Scope) SetTypeTag(tag string) error {
	if s.sealed {
		return fmt.Errorf("set type of %s: %w", s.id, ErrSealed)
	}
	s.typeTag = tag
	return nil
}

// SetProperty inserts name or overwrites it in place; an overwritten key
// keeps its original position. A scope entity must reference a child created
// by AddChildScope that no other property references. Replacing a scope
// reference releases the old child.
func (s *Scope) SetProperty(name string, e Entity) error {
	if s.sealed {
		return fmt.Errorf("set %q on %s: %w", name, s.id, ErrSealed)
	}
	if e.IsScope() {
		if _, ok := s.children[e.scopeID]; !ok {
			return fmt.Errorf("set %q on %s: %w: %s", name, s.id, ErrDanglingReference, e.scopeID)
		}
		if owner, ok := s.refs[e.scopeID]; ok && owner != name {
			return fmt.Errorf("set %q on %s: scope %s already held by %q: %w", name, s.id, e.scopeID, owner, ErrDanglingReference)
		}
	}

	old, exists := s.props[name]
	if !exists {
		s.keys = append(s.keys, name)
	} else if old.IsScope() && old.scopeID != e.scopeID {
		delete(s.children, old.scopeID)
		delete(s.refs, old.scopeID)
	}
	s.props[name] = e
	if e.IsScope() {
		s.refs[e.scopeID] = name
	}
	return nil
}

// AddChildScope creates a child scope, stores it under name and returns it
// for further population.
func (s *Scope) AddChildScope(name, typeTag string) (*Scope, error) {
	return s.addChild(name, typeTag, false)
}

// AddChildSequence is AddChildScope for array values.
func (s *Scope) AddChildSequence(name string) (*Scope, error) {
	return s.addChild(name, "", true)
}

func (s *Scope) addChild(name, typeTag string, sequence bool) (*Scope, error) {
	if s.sealed {
		return nil, fmt.Errorf("add child %q to %s: %w", name, s.id, ErrSealed)
	}
	child := NewScopeWithIDs(typeTag, s.newID)
	child.sequence = sequence
	s.children[child.id] = child
	if err := s.SetProperty(name, FromScope(child.id)); err != nil {
		delete(s.children, child.id)
		return nil, err
	}
	return child, nil
}

// Property returns the entity stored under name.
func (s *Scope) Property(name string) (Entity, bool) {
	e, ok := s.props[name]
	return e, ok
}

// HasProperty reports whether name is set.
func (s *Scope) HasProperty(name string) bool {
	_, ok := s.props[name]
	return ok
}

// Keys returns property names in insertion order.
func (s *Scope) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Each visits properties in insertion order.
func (s *Scope) Each(fn func(name string, e Entity)) {
	for _, k := range s.keys {
		fn(k, s.props[k])
	}
}

// Child returns an owned child by id.
func (s *Scope) Child(id string) (*Scope, bool) {
	c, ok := s.children[id]
	return c, ok
}

// Children is the derived view of properties that reference scopes, in
// property order.
func (s *Scope) Children() []*Scope {
	var out []*Scope
	for _, k := range s.keys {
		if e := s.props[k]; e.IsScope() {
			out = append(out, s.children[e.scopeID])
		}
	}
	return out
}

// Seal freezes s and its whole subtree. A sealed scope's subtree is
// already sealed, so repeated calls stop there.
func (s *Scope) Seal() {
	if s.sealed {
		return
	}
	s.sealed = true
	for _, c := range s.children {
		c.Seal()
	}
}

// Walk visits s and its descendants depth first in property order. depth
// is 1 for s. Returning false from fn skips the scope's children.
func (s *Scope) Walk(fn func(sc *Scope, depth int) bool) {
	s.walk(fn, 1)
}

func (s *Scope) walk(fn func(*Scope, int) bool, depth int) {
	if !fn(s, depth) {
		return
	}
	for _, c := range s.Children() {
		c.walk(fn, depth+1)
	}
}

// Depth is the height of the subtree rooted at s, 1 for a scope without
// children.
func (s *Scope) Depth() int {
	deepest := 0
	s.Walk(func(_ *Scope, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// Leaves counts scalar properties in the subtree rooted at s.
func (s *Scope) Leaves() int {
	n := 0
	s.Walk(func(sc *Scope, _ int) bool {
		for _, k := range sc.keys {
			if !sc.props[k].IsScope() {
				n++
			}
		}
		return true
	})
	return n
}
