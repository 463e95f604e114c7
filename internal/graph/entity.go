package graph

import (
	"fmt"

	"github.com/agentic-research/sage/internal/datatype"
)

// ErrTypeMismatch is returned when an Entity accessor is called on the wrong
// variant.
var ErrTypeMismatch = datatype.ErrTypeMismatch

// Entity is a resolved property value: either a scalar or a reference to a
// child Scope by id. Entities are values; replacing a property means
// building a new Entity.
type Entity struct {
	scopeID string
	value   datatype.Value
}

// FromPrimitive wraps a scalar.
func FromPrimitive(v datatype.Value) Entity {
	return Entity{value: v}
}

// FromScope references a child scope. The owning Scope, not the Entity,
// holds the child.
func FromScope(id string) Entity {
	return Entity{scopeID: id}
}

// IsScope reports whether e references a scope.
func (e Entity) IsScope() bool { return e.scopeID != "" }

// AsPrimitive returns the scalar or ErrTypeMismatch for scope references.
func (e Entity) AsPrimitive() (datatype.Value, error) {
	if e.IsScope() {
		return datatype.Value{}, fmt.Errorf("%w: entity references scope %s", ErrTypeMismatch, e.scopeID)
	}
	return e.value, nil
}

// AsScopeID returns the referenced scope id or ErrTypeMismatch for scalars.
func (e Entity) AsScopeID() (string, error) {
	if !e.IsScope() {
		return "", fmt.Errorf("%w: entity holds %s, not a scope", ErrTypeMismatch, e.value.Kind())
	}
	return e.scopeID, nil
}

// Equal compares two entities structurally.
func (e Entity) Equal(o Entity) bool {
	if e.IsScope() || o.IsScope() {
		return e.scopeID == o.scopeID
	}
	return e.value.Equal(o.value)
}

func (e Entity) String() string {
	if e.IsScope() {
		return "<" + e.scopeID + ">"
	}
	return e.value.Literal()
}
