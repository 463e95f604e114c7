// Package document defines the generic, order-preserving value a parsed
// semi-structured document is materialized into, and the parsers that
// produce it.
package document

import (
	"fmt"
	"strconv"
)

// Kind tags the variant of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// NumberForm records how a number was represented by the parser.
type NumberForm uint8

const (
	IntForm     NumberForm = iota // fits int64
	FloatForm                     // fits float64
	LiteralForm                   // neither; only the source text is kept
)

// Member is one key/value pair of an Object, in document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is a closed tagged union over the six document shapes. Objects keep
// their members in document order; a duplicate key keeps its first position
// and takes the last value.
type Value struct {
	kind    Kind
	b       bool
	form    NumberForm
	i       int64
	f       float64
	s       string // String payload, or the literal of a LiteralForm number
	items   []*Value
	members []Member
	index   map[string]int
}

func NewNull() *Value                 { return &Value{kind: Null} }
func NewBool(b bool) *Value           { return &Value{kind: Bool, b: b} }
func NewInt(i int64) *Value           { return &Value{kind: Number, form: IntForm, i: i} }
func NewFloat(f float64) *Value       { return &Value{kind: Number, form: FloatForm, f: f} }
func NewString(s string) *Value       { return &Value{kind: String, s: s} }
func NewArray(items ...*Value) *Value { return &Value{kind: Array, items: items} }

// NewNumberLiteral keeps a number that fits neither int64 nor float64.
func NewNumberLiteral(lit string) *Value {
	return &Value{kind: Number, form: LiteralForm, s: lit}
}

// NewObject returns an empty object; populate it with Set.
func NewObject() *Value {
	return &Value{kind: Object, index: make(map[string]int)}
}

// Kind reports the variant.
func (v *Value) Kind() Kind { return v.kind }

// Structured reports whether v is an object or an array.
func (v *Value) Structured() bool {
	return v.kind == Object || v.kind == Array
}

func (v *Value) Bool() bool             { return v.b }
func (v *Value) Str() string            { return v.s }
func (v *Value) NumberForm() NumberForm { return v.form }
func (v *Value) Int() int64             { return v.i }
func (v *Value) Float() float64         { return v.f }

// Literal returns the source-like text of a scalar.
func (v *Value) Literal() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		switch v.form {
		case IntForm:
			return strconv.FormatInt(v.i, 10)
		case FloatForm:
			return strconv.FormatFloat(v.f, 'g', -1, 64)
		}
		return v.s
	case String:
		return v.s
	}
	return ""
}

// Items returns the elements of an array.
func (v *Value) Items() []*Value { return v.items }

// Append adds an element to an array.
func (v *Value) Append(item *Value) {
	v.items = append(v.items, item)
}

// Members returns the members of an object in document order.
func (v *Value) Members() []Member { return v.members }

// Set inserts or overwrites a member of an object.
func (v *Value) Set(key string, val *Value) {
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, ok := v.index[key]; ok {
		v.members[i].Value = val
		return
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Get looks up a member of an object.
func (v *Value) Get(key string) (*Value, bool) {
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.members[i].Value, true
}

// Len is the number of members or items; zero for scalars.
func (v *Value) Len() int {
	switch v.kind {
	case Object:
		return len(v.members)
	case Array:
		return len(v.items)
	}
	return 0
}

// Depth is the container nesting depth: 0 for scalars, 1 for a flat
// object or array.
func (v *Value) Depth() int {
	if !v.Structured() {
		return 0
	}
	deepest := 0
	v.Each(func(_ string, child *Value) {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	})
	return deepest + 1
}

// Leaves counts the scalar values reachable from v.
func (v *Value) Leaves() int {
	if !v.Structured() {
		return 1
	}
	n := 0
	v.Each(func(_ string, child *Value) {
		n += child.Leaves()
	})
	return n
}

// Each calls fn for every member of an object, or for every element of an
// array keyed by its decimal position.
func (v *Value) Each(fn func(key string, child *Value)) {
	switch v.kind {
	case Object:
		for _, m := range v.members {
			fn(m.Key, m.Value)
		}
	case Array:
		for i, item := range v.items {
			fn(strconv.Itoa(i), item)
		}
	}
}
