// Package profile gathers per-field statistics over a finished scope tree.
//
// Fields are keyed by their path from the root with sequence positions
// collapsed, so every element of "actor" contributes to "actor[].name".
package profile

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/sage/internal/datatype"
	"github.com/agentic-research/sage/internal/graph"
)

const (
	enumMaxDistinct      = 20
	identifierRatioThres = 0.5
)

// FieldStats holds statistics about a single field path.
type FieldStats struct {
	Path        string
	Count       int                   // scalar occurrences
	Kinds       map[datatype.Kind]int // occurrences per datatype
	Cardinality int                   // number of distinct canonical values
	Values      map[string]int        // distinct value -> count
	Owners      *roaring.Bitmap       // ordinals of scopes holding the field
}

// Kind returns the most frequent datatype of the field. Ties go to the
// lower Kind.
func (fs *FieldStats) Kind() datatype.Kind {
	best, bestN := datatype.Text, -1
	for k, n := range fs.Kinds {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// Mixed reports whether the field holds more than one datatype.
func (fs *FieldStats) Mixed() bool { return len(fs.Kinds) > 1 }

// Enum reports whether the field looks like a small closed vocabulary:
// few distinct values, each repeated.
func (fs *FieldStats) Enum() bool {
	return fs.Cardinality >= 2 && fs.Cardinality <= enumMaxDistinct &&
		float64(fs.Cardinality)/float64(fs.Count) <= identifierRatioThres
}

// Profile is the collection of field statistics for one tree.
type Profile struct {
	Fields map[string]*FieldStats
	Scopes int
}

// Paths returns the field paths in sorted order.
func (p *Profile) Paths() []string {
	out := make([]string, 0, len(p.Fields))
	for path := range p.Fields {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Sorted returns the field statistics ordered by path.
func (p *Profile) Sorted() []*FieldStats {
	paths := p.Paths()
	out := make([]*FieldStats, len(paths))
	for i, path := range paths {
		out[i] = p.Fields[path]
	}
	return out
}

// Analyze walks root and collects statistics for every scalar property.
func Analyze(root *graph.Scope) *Profile {
	p := &Profile{Fields: make(map[string]*FieldStats)}
	a := &analyzer{profile: p}
	a.walk(root, "")
	for _, fs := range p.Fields {
		fs.Cardinality = len(fs.Values)
	}
	return p
}

type analyzer struct {
	profile *Profile
	ordinal uint32
}

func (a *analyzer) walk(s *graph.Scope, prefix string) {
	self := a.ordinal
	a.ordinal++
	a.profile.Scopes++

	s.Each(func(name string, e graph.Entity) {
		path := join(prefix, name, s.IsSequence())
		if e.IsScope() {
			id, _ := e.AsScopeID()
			if child, ok := s.Child(id); ok {
				a.walk(child, path)
			}
			return
		}
		v, _ := e.AsPrimitive()
		a.record(path, v, self)
	})
}

func (a *analyzer) record(path string, v datatype.Value, owner uint32) {
	fs, ok := a.profile.Fields[path]
	if !ok {
		fs = &FieldStats{
			Path:   path,
			Kinds:  make(map[datatype.Kind]int),
			Values: make(map[string]int),
			Owners: roaring.New(),
		}
		a.profile.Fields[path] = fs
	}
	fs.Count++
	fs.Kinds[v.Kind()]++
	fs.Values[v.String()]++
	fs.Owners.Add(owner)
}

// join extends prefix by name; positions inside a sequence collapse to "[]".
func join(prefix, name string, sequence bool) string {
	if sequence {
		if prefix == "" {
			return "[]"
		}
		return prefix + "[]"
	}
	if prefix == "" {
		return name
	}
	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(name))
	b.WriteString(prefix)
	b.WriteByte('.')
	b.WriteString(name)
	return b.String()
}
