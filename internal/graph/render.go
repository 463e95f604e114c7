package graph

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// Render returns the canonical text form
//
//	Type<id> : {
//	  "key" : value,
//	  "child" : Type<id> : {
//	    ...
//	  }
//	}
//
// with properties in insertion order. The output depends only on the tree,
// so rendering the same scope twice yields identical text.
func (s *Scope) Render() string {
	var b strings.Builder
	s.render(&b, 0)
	return b.String()
}

func (s *Scope) String() string { return s.Render() }

func (s *Scope) render(b *strings.Builder, depth int) {
	b.WriteString(s.typeTag)
	b.WriteByte('<')
	b.WriteString(s.id)
	b.WriteString("> : {")
	if len(s.keys) == 0 {
		b.WriteByte('}')
		return
	}
	inner := strings.Repeat(indentUnit, depth+1)
	for i, k := range s.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		b.WriteString(inner)
		b.WriteString(strconv.Quote(k))
		b.WriteString(" : ")
		e := s.props[k]
		if e.IsScope() {
			s.children[e.scopeID].render(b, depth+1)
			continue
		}
		b.WriteString(e.value.Literal())
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteByte('}')
}
