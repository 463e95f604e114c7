// Package datatype implements the scalar datatypes a document property can
// resolve to, modeled on https://schema.org/DataType.
package datatype

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrTypeMismatch is returned by accessors called on the wrong variant.
var ErrTypeMismatch = errors.New("type mismatch")

// Kind identifies the variant held by a Value.
type Kind uint8

// Text is first so the zero Value is empty text.
const (
	Text Kind = iota
	Boolean
	Integer
	Float
	Timestamp
)

var kindNames = [...]string{
	Text:      "Text",
	Boolean:   "Boolean",
	Integer:   "Integer",
	Float:     "Float",
	Timestamp: "Timestamp",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is an immutable scalar. The zero Value is Text("").
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string // Text payload, or canonical form of a Timestamp
	t    time.Time
}

func NewBool(b bool) Value { return Value{kind: Boolean, b: b} }

func NewInt(i int64) Value { return Value{kind: Integer, i: i} }

func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

func NewText(s string) Value { return Value{kind: Text, s: s} }

// NewTime builds a Timestamp. canonical is the text form the value renders
// as; when empty, RFC 3339 with nanoseconds is used.
func NewTime(t time.Time, canonical string) Value {
	if canonical == "" {
		canonical = t.Format(time.RFC3339Nano)
	}
	return Value{kind: Timestamp, t: t, s: canonical}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// String returns the canonical text rendering.
func (v Value) String() string {
	switch v.kind {
	case Boolean:
		return strconv.FormatBool(v.b)
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return formatFloat(v.f)
	default:
		return v.s
	}
}

// Literal returns the rendering used inside Scope output: Text and Timestamp
// are quoted, the rest print bare.
func (v Value) Literal() string {
	switch v.kind {
	case Text, Timestamp:
		return strconv.Quote(v.s)
	default:
		return v.String()
	}
}

// AsText round-trips any variant into Text through its canonical rendering.
func (v Value) AsText() Value {
	return NewText(v.String())
}

func (v Value) Bool() (bool, error) {
	if v.kind != Boolean {
		return false, v.mismatch(Boolean)
	}
	return v.b, nil
}

func (v Value) Int() (int64, error) {
	if v.kind != Integer {
		return 0, v.mismatch(Integer)
	}
	return v.i, nil
}

func (v Value) Float() (float64, error) {
	if v.kind != Float {
		return 0, v.mismatch(Float)
	}
	return v.f, nil
}

func (v Value) Text() (string, error) {
	if v.kind != Text {
		return "", v.mismatch(Text)
	}
	return v.s, nil
}

func (v Value) Time() (time.Time, error) {
	if v.kind != Timestamp {
		return time.Time{}, v.mismatch(Timestamp)
	}
	return v.t, nil
}

func (v Value) mismatch(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrTypeMismatch, want, v.kind)
}

// Native returns the payload as a plain Go value. Timestamps come back as
// their canonical string so projections stay JSON friendly.
func (v Value) Native() any {
	switch v.kind {
	case Boolean:
		return v.b
	case Integer:
		return v.i
	case Float:
		return v.f
	default:
		return v.s
	}
}

// Equal reports structural equality: same variant, same payload.
func (v Value) Equal(o Value) bool {
	return v.Compare(o) == 0
}

// Compare orders values first by Kind, then by the variant's natural order:
// false < true, numeric, lexicographic, chronological. Ties that still
// render differently are broken so Compare is zero only for identical
// payloads: -0.0 sorts before 0.0, and equal instants order by canonical
// text.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(v.kind, o.kind)
	}
	switch v.kind {
	case Boolean:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	case Integer:
		return cmp.Compare(v.i, o.i)
	case Float:
		if c := cmp.Compare(v.f, o.f); c != 0 {
			return c
		}
		switch sv, so := math.Signbit(v.f), math.Signbit(o.f); {
		case sv == so:
			return 0
		case sv:
			return -1
		default:
			return 1
		}
	case Timestamp:
		if c := v.t.Compare(o.t); c != 0 {
			return c
		}
		return cmp.Compare(v.s, o.s)
	default:
		return cmp.Compare(v.s, o.s)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep floats visibly fractional so "2.0" does not render as an integer.
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' || c == 'N' || c == 'I' {
			return s
		}
	}
	return s + ".0"
}
