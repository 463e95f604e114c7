package datatype

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// numberRe is the JSON number grammar. strconv.ParseFloat alone would also
// accept "NaN", "Inf", hex floats and underscores.
var numberRe = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// dateRe gates the layout loop; every supported layout starts with a date or
// a clock time.
var dateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}:\d{2}:\d{2})`)

// timeLayouts covers schema.org DateTime, Date and Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"15:04:05Z07:00",
	"15:04:05.999999999",
	time.TimeOnly,
}

// Classify tags a raw literal with the first datatype that accepts it, trying
// Boolean, Integer, Float and Timestamp in that order. Anything else is Text,
// so Classify never fails.
func Classify(literal string) Value {
	if v, ok := ParseBool(literal); ok {
		return v
	}
	if v, ok := ParseInt(literal); ok {
		return v
	}
	if v, ok := ParseFloat(literal); ok {
		return v
	}
	if v, ok := ParseTime(literal); ok {
		return v
	}
	return NewText(literal)
}

// ParseBool accepts exactly "true" and "false".
func ParseBool(s string) (Value, bool) {
	switch s {
	case "true":
		return NewBool(true), true
	case "false":
		return NewBool(false), true
	}
	return Value{}, false
}

// ParseInt accepts base-10 integers whose canonical form is the literal
// itself. Leading zeros and explicit plus signs stay Text: "02134" is a
// postal code, not 2134.
func ParseInt(s string) (Value, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil || strconv.FormatInt(i, 10) != s {
		return Value{}, false
	}
	return NewInt(i), true
}

// ParseFloat accepts finite JSON numbers.
func ParseFloat(s string) (Value, bool) {
	if !numberRe.MatchString(s) {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, false
	}
	return NewFloat(f), true
}

// ParseTime accepts the layouts in timeLayouts. The literal becomes the
// canonical form of the Timestamp.
func ParseTime(s string) (Value, bool) {
	if !dateRe.MatchString(s) {
		return Value{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTime(t, s), true
		}
	}
	return Value{}, false
}
