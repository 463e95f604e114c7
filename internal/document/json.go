package document

import (
	"errors"

	"github.com/ohler55/ojg/oj"
)

var (
	errEmpty    = errors.New("empty document")
	errTrailing = errors.New("more than one top-level value")
)

// JSON parses JSON and JSON-LD. Member order is taken from the token stream
// rather than a Go map, so it matches the source text.
type JSON struct{}

func (JSON) Format() string { return "json" }

func (JSON) Parse(data []byte) (*Value, error) {
	b := &jsonBuilder{}
	if err := oj.Tokenize(data, b); err != nil {
		return nil, &ParseError{Format: "json", Err: err}
	}
	switch {
	case b.trailing:
		return nil, &ParseError{Format: "json", Err: errTrailing}
	case b.root == nil:
		return nil, &ParseError{Format: "json", Err: errEmpty}
	}
	return b.root, nil
}

// jsonBuilder assembles a Value from tokens using an explicit container
// stack, so nesting depth never grows the Go call stack.
type jsonBuilder struct {
	oj.ZeroHandler

	root     *Value
	stack    []*Value
	keys     []string
	trailing bool
}

func (b *jsonBuilder) add(v *Value) {
	if len(b.stack) == 0 {
		if b.root != nil {
			b.trailing = true
			return
		}
		b.root = v
		return
	}
	top := len(b.stack) - 1
	parent := b.stack[top]
	if parent.kind == Object {
		parent.Set(b.keys[top], v)
		return
	}
	parent.Append(v)
}

func (b *jsonBuilder) push(v *Value) {
	b.add(v)
	b.stack = append(b.stack, v)
	b.keys = append(b.keys, "")
}

func (b *jsonBuilder) pop() {
	if len(b.stack) == 0 {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.keys = b.keys[:len(b.keys)-1]
}

func (b *jsonBuilder) Null()             { b.add(NewNull()) }
func (b *jsonBuilder) Bool(v bool)       { b.add(NewBool(v)) }
func (b *jsonBuilder) Int(v int64)       { b.add(NewInt(v)) }
func (b *jsonBuilder) Float(v float64)   { b.add(NewFloat(v)) }
func (b *jsonBuilder) Number(num string) { b.add(NewNumberLiteral(num)) }
func (b *jsonBuilder) String(v string)   { b.add(NewString(v)) }
func (b *jsonBuilder) ObjectStart()      { b.push(NewObject()) }
func (b *jsonBuilder) ObjectEnd()        { b.pop() }
func (b *jsonBuilder) ArrayStart()       { b.push(NewArray()) }
func (b *jsonBuilder) ArrayEnd()         { b.pop() }

func (b *jsonBuilder) Key(k string) {
	if len(b.keys) > 0 {
		b.keys[len(b.keys)-1] = k
	}
}
